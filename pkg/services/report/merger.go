package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/work-reports/pkg/document"
	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// Formatter renders values for display. The merger holds no locale logic of its own.
type Formatter interface {
	Currency(amount decimal.Decimal) string
	Hours(hours decimal.Decimal) string
	Date(t time.Time) string
	CurrencyCode() string
}

type Merger interface {
	// MergeTemplate returns a new tree with every placeholder of template resolved from model.
	// template is never modified.
	MergeTemplate(template document.Node, model *domain.ReportModel) (document.Node, error)
}

type merger struct {
	format Formatter
}

func NewMerger(format Formatter) Merger {
	return &merger{format: format}
}

func (m *merger) MergeTemplate(template document.Node, model *domain.ReportModel) (document.Node, error) {
	if err := document.Validate(template); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("%w: report model is nil", domain.ErrInvalidArgument)
	}

	w := &mergeWalker{
		replacer: m.replacer(model),
		table:    m.activitiesTable(model),
	}
	return w.walk(template), nil
}

// replacer substitutes every known token in one pass, so substituted values are never re-scanned.
func (m *merger) replacer(model *domain.ReportModel) *strings.Replacer {
	return strings.NewReplacer(
		"{{reportDate}}", m.format.Date(model.ReportDate),
		"{{location}}", model.Config.Location,
		"{{companyName}}", model.Company.Name,
		"{{taxNumber}}", model.Company.TaxID,
		"{{city}}", model.Company.City,
		"{{workerName}}", model.Actor.DisplayName,
		"{{introText}}", model.Config.IntroText,
		"{{outroText}}", model.Config.OutroText,
		"{{totalAmount}}", m.format.Currency(model.TotalAmount),
	)
}

// activitiesTable builds the billing table block: a header row, one row per line item and a
// TOTAL row spanning the first four columns.
func (m *merger) activitiesTable(model *domain.ReportModel) *document.Map {
	code := m.format.CurrencyCode()

	body := make(document.List, 0, len(model.LineItems)+2)
	body = append(body, document.List{
		document.String("#"),
		document.String("Activity"),
		document.String(fmt.Sprintf("Rate/Hour (%s)", code)),
		document.String("Hours"),
		document.String(fmt.Sprintf("Total (%s)", code)),
	})
	for _, item := range model.LineItems {
		body = append(body, document.List{
			document.String(strconv.Itoa(item.Sequence)),
			document.String(item.Name),
			document.String(m.format.Currency(item.Rate)),
			document.String(m.format.Hours(item.Hours)),
			document.String(m.format.Currency(item.LineTotal)),
		})
	}
	body = append(body, document.List{
		document.NewMap(
			document.Entry{Key: "text", Value: document.String("TOTAL")},
			document.Entry{Key: "colSpan", Value: document.Number(4)},
			document.Entry{Key: "alignment", Value: document.String("right")},
			document.Entry{Key: "bold", Value: document.Bool(true)},
		),
		document.NewMap(),
		document.NewMap(),
		document.NewMap(),
		document.NewMap(
			document.Entry{Key: "text", Value: document.String(m.format.Currency(model.TotalAmount))},
			document.Entry{Key: "bold", Value: document.Bool(true)},
		),
	})

	return document.NewMap(
		document.Entry{Key: "table", Value: document.NewMap(
			document.Entry{Key: "headerRows", Value: document.Number(1)},
			document.Entry{Key: "widths", Value: document.List{
				document.String("auto"),
				document.String("*"),
				document.String("auto"),
				document.String("auto"),
				document.String("auto"),
			}},
			document.Entry{Key: "body", Value: body},
		)},
		document.Entry{Key: "layout", Value: document.String("lightHorizontalLines")},
	)
}

type mergeWalker struct {
	replacer *strings.Replacer
	table    *document.Map
}

func (w *mergeWalker) walk(n document.Node) document.Node {
	switch v := n.(type) {
	case document.Scalar:
		if v.IsString() {
			return document.String(w.replacer.Replace(v.Str))
		}
		return v
	case document.List:
		out := make(document.List, len(v))
		for i, child := range v {
			if _, ok := child.(document.Placeholder); ok {
				// each occurrence gets its own copy
				out[i] = document.Clone(w.table)
				continue
			}
			out[i] = w.walk(child)
		}
		return out
	case *document.Map:
		entries := v.Entries()
		out := make([]document.Entry, 0, len(entries))
		for _, e := range entries {
			out = append(out, document.Entry{Key: e.Key, Value: w.walk(e.Value)})
		}
		return document.NewMap(out...)
	case document.Placeholder:
		// only list elements become tables; anywhere else the token stays literal text
		return document.String(v.Token)
	default:
		return n
	}
}
