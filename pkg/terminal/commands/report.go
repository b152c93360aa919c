package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/obs-tools/visit-atlas/pkg/models/domain"
	"github.com/obs-tools/visit-atlas/pkg/terminal/export"
)

type ReportCmd struct {
	configPath string
	zone       string
	periodCode string
	category   string
	dimension  string
	year       int
	limit      int
	reporter   *export.Reporter
}

func NewReportCmd(reporter *export.Reporter) *cobra.Command {
	rc := &ReportCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run a year-over-year comparison for one dimension",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.configPath, "config", "", "Path to the configuration file")
	cmd.Flags().StringVar(&rc.zone, "zone", "", "Observation zone to report on")
	cmd.Flags().StringVar(&rc.dimension, "dimension", "", "Dimension to rank (e.g. departments)")
	cmd.Flags().StringVar(&rc.periodCode, "period", "year", "Symbolic period code")
	cmd.Flags().StringVar(&rc.category, "category", "tourist", "Visitor category")
	cmd.Flags().IntVar(&rc.year, "year", time.Now().Year(), "Reference year")
	cmd.Flags().IntVar(&rc.limit, "limit", 0, "Ranking depth (0 uses the dimension default)")

	_ = cmd.MarkFlagRequired("zone")
	_ = cmd.MarkFlagRequired("dimension")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	dim, ok := domain.ParseDimension(rc.dimension)
	if !ok {
		return fmt.Errorf("unknown dimension %q, supported: %v", rc.dimension, domain.Dimensions())
	}

	d, err := buildDeps(rc.configPath)
	if err != nil {
		return err
	}
	defer d.Close()

	rep, err := d.reports.DimensionReport(cmd.Context(), domain.ReportRequest{
		Year:      rc.year,
		Period:    rc.periodCode,
		Zone:      rc.zone,
		Dimension: dim,
		Category:  domain.VisitorCategory(rc.category),
		Limit:     rc.limit,
	})
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	return rc.reporter.HandleReport(rep)
}

type ActivityCmd struct {
	configPath string
	zone       string
	periodCode string
	year       int
	reporter   *export.Reporter
}

func NewActivityCmd(reporter *export.Reporter) *cobra.Command {
	ac := &ActivityCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show day-visit totals and the peak day",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.configPath, "config", "", "Path to the configuration file")
	cmd.Flags().StringVar(&ac.zone, "zone", "", "Observation zone to report on")
	cmd.Flags().StringVar(&ac.periodCode, "period", "year", "Symbolic period code")
	cmd.Flags().IntVar(&ac.year, "year", time.Now().Year(), "Reference year")

	_ = cmd.MarkFlagRequired("zone")

	return cmd
}

func (ac *ActivityCmd) run(cmd *cobra.Command, _ []string) error {
	d, err := buildDeps(ac.configPath)
	if err != nil {
		return err
	}
	defer d.Close()

	summary, err := d.reports.ActivitySummary(cmd.Context(), domain.ReportRequest{
		Year:   ac.year,
		Period: ac.periodCode,
		Zone:   ac.zone,
	})
	if err != nil {
		return fmt.Errorf("failed to build activity summary: %w", err)
	}

	return ac.reporter.HandleActivity(summary)
}
