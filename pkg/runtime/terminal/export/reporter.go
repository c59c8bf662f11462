package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/services/report"
	"github.com/shopspring/decimal"
)

type Formatter interface {
	Currency(amount decimal.Decimal) string
	Hours(hours decimal.Decimal) string
	Date(t time.Time) string
	Month(p domain.Period) string
}

type TableConfig struct {
	Widths []int
}

func LineItemsTableConfig() TableConfig {
	return TableConfig{Widths: []int{3, 40, 14, 8, 14}}
}

func HistoryTableConfig() TableConfig {
	return TableConfig{Widths: []int{36, 24, 7, 11, 30}}
}

// Reporter prints report models and listings to the console as fixed-width tables.
type Reporter struct {
	writer    io.Writer
	formatter Formatter
}

func NewReporter(writer io.Writer, formatter Formatter) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer:    writer,
		formatter: formatter,
	}
}

const modelTemplate = `
Work report for {{.Company.Name}}{{if .Company.TaxID}} ({{.Company.TaxID}}){{end}}{{if .Company.City}}, {{.Company.City}}{{end}}
Worker: {{.Actor.DisplayName}}
Period: {{month .Period}}
Report date: {{date .ReportDate}}{{if .Config.Location}}, {{.Config.Location}}{{end}}

{{separator}}
{{row "#" "Activity" "Rate/Hour" "Hours" "Total"}}
{{separator}}
{{range .LineItems}}{{row (print .Sequence) .Name (money .Rate) (hours .Hours) (money .LineTotal)}}
{{end}}{{separator}}
Total: {{money .TotalAmount}}
`

const historyTemplate = `{{if not .}}No generated reports.
{{else}}{{separator}}
{{row "ID" "Company" "Period" "Report date" "Stored at"}}
{{separator}}
{{range .}}{{row .ID .CompanyName (print .Period) (date .ReportDate) (stored .StoragePath)}}
{{end}}{{separator}}
{{end}}`

const sweepTemplate = `Scanned {{.Scanned}} stored objects, {{len .Orphans}} without a tracking record.
{{range .Orphans}}  orphan: {{.Path}} ({{.Size}} bytes)
{{end}}{{range .Deleted}}  deleted: {{.}}
{{end}}`

func (c *Reporter) HandleModel(model *domain.ReportModel) error {
	return c.execute("model", modelTemplate, LineItemsTableConfig(), model)
}

func (c *Reporter) HandleHistory(records []domain.GeneratedArtifactRecord) error {
	return c.execute("history", historyTemplate, HistoryTableConfig(), records)
}

func (c *Reporter) HandleSweep(result *report.SweepResult) error {
	return c.execute("sweep", sweepTemplate, TableConfig{}, result)
}

func (c *Reporter) execute(name, text string, config TableConfig, data any) error {
	funcMap := template.FuncMap{
		"row": func(cells ...string) string {
			parts := make([]string, len(cells))
			for i, cell := range cells {
				parts[i] = fmt.Sprintf("%-*s", config.Widths[i], truncate(cell, config.Widths[i]))
			}
			return "| " + strings.Join(parts, " | ") + " |"
		},
		"separator": func() string {
			parts := make([]string, len(config.Widths))
			for i, w := range config.Widths {
				parts[i] = strings.Repeat("-", w+2)
			}
			return "+" + strings.Join(parts, "+") + "+"
		},
		"money": c.formatter.Currency,
		"hours": c.formatter.Hours,
		"date":  c.formatter.Date,
		"month": c.formatter.Month,
		"stored": func(path *string) string {
			if path == nil {
				return "-"
			}
			return *path
		},
	}

	t, err := template.New(name).Funcs(funcMap).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, data)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
