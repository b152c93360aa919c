// Package export renders comparison reports for the console.
package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/obs-tools/visit-atlas/pkg/models/domain"
)

// Reporter outputs reports to the console in a formatted text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

var funcs = template.FuncMap{
	"pct": func(p *float64) string {
		if p == nil {
			return "n/a"
		}
		return fmt.Sprintf("%+.1f%%", *p)
	},
	"date": func(t interface{ Format(string) string }) string {
		return t.Format("2006-01-02")
	},
}

const reportTmpl = `
{{.Dimension}} report for {{.Zone}} ({{.Period}} {{.Year}})
Current:  {{date .Resolved.Current.Start}} to {{date .Resolved.Current.End}}
Previous: {{date .Resolved.Previous.Start}} to {{date .Resolved.Previous.End}}

{{range .Rows}}{{if .Other}}  .{{else}}{{printf "%3d" .Rank}}{{end}} {{printf "%-30s" .Member}} {{printf "%12d" .Current}} {{printf "%12d" .Previous}} {{pct .DeltaPct}}
{{end}}`

func (c *Reporter) HandleReport(report *domain.DimensionReport) error {
	t, err := template.New("report").Funcs(funcs).Parse(reportTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, report)
}

const activityTmpl = `
Day-visit activity for {{.Zone}} ({{.Period}} {{.Year}})
Current:  {{date .Resolved.Current.Start}} to {{date .Resolved.Current.End}}
Previous: {{date .Resolved.Previous.Start}} to {{date .Resolved.Previous.End}}

Total:    {{.Total}} (previous {{.TotalPrevious}}, {{pct .TotalDeltaPct}})
{{if .Peak}}Peak day: {{date .Peak.Date}} with {{.Peak.Volume}} visits ({{pct .PeakDeltaPct}})
{{else}}Peak day: no data
{{end}}`

func (c *Reporter) HandleActivity(summary *domain.ActivitySummary) error {
	t, err := template.New("activity").Funcs(funcs).Parse(activityTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, summary)
}
