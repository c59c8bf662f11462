package report

import (
	"fmt"
	"testing"

	"github.com/de-tools/work-reports/pkg/document"
	"github.com/de-tools/work-reports/pkg/format"
	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const templateJSON = `{
  "content": [
    {"text": "{{companyName}} ({{taxNumber}}), {{city}}", "style": "header"},
    "{{location}}, {{reportDate}}",
    {"stack": ["{{introText}}", "{{activitiesTable}}", "{{outroText}}"]},
    "Total: {{totalAmount}} by {{workerName}} {{unknownToken}}",
    {"columns": [7, true, null]}
  ],
  "styles": {"header": {"bold": true}}
}`

func acmeModel() *domain.ReportModel {
	return &domain.ReportModel{
		Config: domain.ReportConfig{
			Location:  "Ljubljana",
			IntroText: "Work performed in March:",
			OutroText: "Thank you.",
		},
		Company:    domain.CompanyProfile{ID: "c1", Name: "Acme", TaxID: "SI123", City: "Maribor"},
		Actor:      domain.ActorIdentity{ID: "u1", DisplayName: "Jane Doe"},
		Period:     march,
		ReportDate: reportDate,
		LineItems: []domain.LineItem{
			{Sequence: 1, Name: "Dev", Rate: decimal.NewFromInt(50), Hours: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(500)},
			{Sequence: 2, Name: "QA", Rate: decimal.NewFromInt(20), Hours: decimal.NewFromInt(5), LineTotal: decimal.NewFromInt(100)},
		},
		TotalAmount: decimal.NewFromInt(600),
	}
}

func mergeAcme(t *testing.T) (document.Node, document.Node) {
	t.Helper()
	template, err := document.Parse([]byte(templateJSON))
	require.NoError(t, err)

	merged, err := NewMerger(format.Default()).MergeTemplate(template, acmeModel())
	require.NoError(t, err)
	return template, merged
}

func content(t *testing.T, n document.Node) document.List {
	t.Helper()
	m, ok := n.(*document.Map)
	require.True(t, ok)
	c, ok := m.Get("content")
	require.True(t, ok)
	list, ok := c.(document.List)
	require.True(t, ok)
	return list
}

func TestMerger_ResolvesPlaceholders(t *testing.T) {
	_, merged := mergeAcme(t)
	items := content(t, merged)

	header := items[0].(*document.Map)
	text, _ := header.Get("text")
	assert.Equal(t, document.String("Acme (SI123), Maribor"), text)
	style, _ := header.Get("style")
	assert.Equal(t, document.String("header"), style)

	assert.Equal(t, document.String("Ljubljana, 2025-04-02"), items[1])
	assert.Equal(t, document.String("Total: $600.00 by Jane Doe {{unknownToken}}"), items[3])

	cols, _ := items[4].(*document.Map).Get("columns")
	assert.Equal(t, document.List{document.Number(7), document.Bool(true), document.Null()}, cols)
}

func TestMerger_TableShape(t *testing.T) {
	_, merged := mergeAcme(t)
	items := content(t, merged)

	stackNode, _ := items[2].(*document.Map).Get("stack")
	stack := stackNode.(document.List)
	require.Len(t, stack, 3)
	assert.Equal(t, document.String("Work performed in March:"), stack[0])
	assert.Equal(t, document.String("Thank you."), stack[2])

	block, ok := stack[1].(*document.Map)
	require.True(t, ok, "placeholder is replaced by one composite node")
	layout, _ := block.Get("layout")
	assert.Equal(t, document.String("lightHorizontalLines"), layout)

	tableNode, _ := block.Get("table")
	table := tableNode.(*document.Map)
	headerRows, _ := table.Get("headerRows")
	assert.Equal(t, document.Number(1), headerRows)

	bodyNode, _ := table.Get("body")
	body := bodyNode.(document.List)
	require.Len(t, body, 1+2+1)

	assert.Equal(t, document.List{
		document.String("#"),
		document.String("Activity"),
		document.String("Rate/Hour (USD)"),
		document.String("Hours"),
		document.String("Total (USD)"),
	}, body[0])
	assert.Equal(t, document.List{
		document.String("1"),
		document.String("Dev"),
		document.String("$50.00"),
		document.String("10.00"),
		document.String("$500.00"),
	}, body[1])
	assert.Equal(t, document.List{
		document.String("2"),
		document.String("QA"),
		document.String("$20.00"),
		document.String("5.00"),
		document.String("$100.00"),
	}, body[2])

	totalRow := body[3].(document.List)
	require.Len(t, totalRow, 5)
	label := totalRow[0].(*document.Map)
	labelText, _ := label.Get("text")
	span, _ := label.Get("colSpan")
	assert.Equal(t, document.String("TOTAL"), labelText)
	assert.Equal(t, document.Number(4), span)
	for _, filler := range totalRow[1:4] {
		assert.Equal(t, 0, filler.(*document.Map).Len())
	}
	amount, _ := totalRow[4].(*document.Map).Get("text")
	assert.Equal(t, document.String("$600.00"), amount)
}

func TestMerger_DoesNotMutateTemplate(t *testing.T) {
	template, err := document.Parse([]byte(templateJSON))
	require.NoError(t, err)
	before, err := document.Marshal(template)
	require.NoError(t, err)

	m := NewMerger(format.Default())
	first, err := m.MergeTemplate(template, acmeModel())
	require.NoError(t, err)
	second, err := m.MergeTemplate(template, acmeModel())
	require.NoError(t, err)

	after, err := document.Marshal(template)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))

	a, err := document.Marshal(first)
	require.NoError(t, err)
	b, err := document.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "merge is deterministic")
	assert.Contains(t, string(before), "{{activitiesTable}}")
}

func TestMerger_Concurrent(t *testing.T) {
	template, err := document.Parse([]byte(templateJSON))
	require.NoError(t, err)
	before, err := document.Marshal(template)
	require.NoError(t, err)

	globex := acmeModel()
	globex.Company = domain.CompanyProfile{ID: "c2", Name: "Globex", TaxID: "DE999", City: "Berlin"}
	models := []*domain.ReportModel{acmeModel(), globex}
	expected := []document.Node{
		document.String("Acme (SI123), Maribor"),
		document.String("Globex (DE999), Berlin"),
	}

	m := NewMerger(format.Default())
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			merged, err := m.MergeTemplate(template, models[i%2])
			if err != nil {
				return err
			}
			if text := headerText(merged); text != expected[i%2] {
				return fmt.Errorf("merge %d: got header %v", i, text)
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
	after, err := document.Marshal(template)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

// headerText returns the text of the first content item, or nil when the tree has another shape.
func headerText(n document.Node) document.Node {
	root, ok := n.(*document.Map)
	if !ok {
		return nil
	}
	c, _ := root.Get("content")
	items, ok := c.(document.List)
	if !ok || len(items) == 0 {
		return nil
	}
	header, ok := items[0].(*document.Map)
	if !ok {
		return nil
	}
	text, _ := header.Get("text")
	return text
}

func TestMerger_DoesNotRescanSubstitutedValues(t *testing.T) {
	model := acmeModel()
	model.Company.Name = "{{workerName}}"
	template, err := document.Parse([]byte(`["{{companyName}}"]`))
	require.NoError(t, err)

	merged, err := NewMerger(format.Default()).MergeTemplate(template, model)

	require.NoError(t, err)
	assert.Equal(t, document.List{document.String("{{workerName}}")}, merged)
}

func TestMerger_PlaceholderOutsideListStaysText(t *testing.T) {
	template := document.NewMap(document.Entry{Key: "content", Value: document.Placeholder{Token: document.ActivitiesTableToken}})

	merged, err := NewMerger(format.Default()).MergeTemplate(template, acmeModel())

	require.NoError(t, err)
	c, _ := merged.(*document.Map).Get("content")
	assert.Equal(t, document.String(document.ActivitiesTableToken), c)
}

func TestMerger_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		template document.Node
	}{
		{name: "nil root", template: nil},
		{name: "nil child", template: document.List{document.String("a"), nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := NewMerger(format.Default()).MergeTemplate(tt.template, acmeModel())

			assert.Nil(t, merged)
			assert.ErrorIs(t, err, domain.ErrTemplateMalformed)
		})
	}
}
