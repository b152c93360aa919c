package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type ZonesCmd struct {
	configPath string
}

func NewZonesCmd() *cobra.Command {
	zc := &ZonesCmd{}
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List the selectable observation zones",
		RunE:  zc.run,
	}

	cmd.Flags().StringVar(&zc.configPath, "config", "", "Path to the configuration file")

	return cmd
}

func (zc *ZonesCmd) run(cmd *cobra.Command, _ []string) error {
	d, err := buildDeps(zc.configPath)
	if err != nil {
		return err
	}
	defer d.Close()

	for _, z := range d.reports.Zones() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", z.Display)
	}
	return nil
}

type PeriodsCmd struct {
	configPath string
	year       int
}

func NewPeriodsCmd() *cobra.Command {
	pc := &PeriodsCmd{}
	cmd := &cobra.Command{
		Use:   "periods",
		Short: "List the symbolic periods resolved for a year",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.configPath, "config", "", "Path to the configuration file")
	cmd.Flags().IntVar(&pc.year, "year", time.Now().Year(), "Reference year")

	return cmd
}

func (pc *PeriodsCmd) run(cmd *cobra.Command, _ []string) error {
	d, err := buildDeps(pc.configPath)
	if err != nil {
		return err
	}
	defer d.Close()

	options, err := d.reports.Periods(pc.year)
	if err != nil {
		return err
	}
	for _, o := range options {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s to %s  %s\n",
			o.Code,
			o.Range.Start.Format("2006-01-02"),
			o.Range.End.Format("2006-01-02"),
			o.Label)
	}
	return nil
}
