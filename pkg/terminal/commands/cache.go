package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

// CacheCmd talks to a running web instance: the query cache lives in
// the server process, so purges go over its admin endpoints.
type CacheCmd struct {
	addr     string
	category string
}

func NewCacheCmd() *cobra.Command {
	cc := &CacheCmd{}
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Administer the query cache of a running instance",
	}

	cmd.PersistentFlags().StringVar(&cc.addr, "addr", "http://127.0.0.1:8080", "Base URL of the web instance")

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Evict cached reports, optionally for a single category",
		RunE:  cc.runPurge,
	}
	purge.Flags().StringVar(&cc.category, "category", "", "Cache category to purge (all when empty)")
	cmd.AddCommand(purge)

	return cmd
}

func (cc *CacheCmd) runPurge(cmd *cobra.Command, _ []string) error {
	target := cc.addr + "/api/v1/cache"
	if cc.category != "" {
		target += "/" + url.PathEscape(cc.category)
	}

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodDelete, target, nil)
	if err != nil {
		return fmt.Errorf("building purge request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("purge failed: %s", resp.Status)
	}

	var body struct {
		Removed int `json:"removed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding purge response: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "purged %d entries\n", body.Removed)
	return nil
}
