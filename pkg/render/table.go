package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/de-tools/work-reports/pkg/document"
)

const (
	cellPadding = 4.0
	columnGap   = 10.0
)

type cell struct {
	text  string
	span  int
	style style
	skip  bool // covered by a preceding colSpan
}

type tableSpec struct {
	rows       [][]cell
	widths     []float64
	headerRows int
	layout     string
}

func (l *layout) table(m *document.Map, s style) error {
	t, _ := m.Get("table")
	tm, ok := t.(*document.Map)
	if !ok {
		return fmt.Errorf("table must be a map, got %s", kindOf(t))
	}

	tbl, err := l.buildTable(tm, s)
	if err != nil {
		return err
	}
	if len(tbl.rows) == 0 {
		return nil
	}
	tbl.layout, _ = str(m, "layout")

	left, _, _, _ := l.pdf.GetMargins()
	for i, row := range tbl.rows {
		if err := l.ctx.Err(); err != nil {
			return err
		}
		h := l.rowHeight(tbl, row)
		if l.pdf.GetY()+h > l.pageH-l.bottom && l.pdf.GetY() > l.top {
			l.pdf.AddPage()
			if i >= tbl.headerRows {
				for hi := 0; hi < tbl.headerRows; hi++ {
					l.drawRow(tbl, hi, left, l.rowHeight(tbl, tbl.rows[hi]))
				}
			}
		}
		l.drawRow(tbl, i, left, h)
	}
	l.pdf.SetXY(left, l.pdf.GetY())
	return nil
}

func (l *layout) buildTable(tm *document.Map, s style) (*tableSpec, error) {
	bodyNode, ok := tm.Get("body")
	if !ok {
		return nil, fmt.Errorf("table has no body")
	}
	body, ok := bodyNode.(document.List)
	if !ok {
		return nil, fmt.Errorf("table body must be a list, got %s", kindOf(bodyNode))
	}

	tbl := &tableSpec{}
	if h, ok := number(tm, "headerRows"); ok && h > 0 {
		tbl.headerRows = int(h)
	}

	columns := 0
	for ri, rowNode := range body {
		row, ok := rowNode.(document.List)
		if !ok {
			return nil, fmt.Errorf("table row %d must be a list, got %s", ri, kindOf(rowNode))
		}
		cells := make([]cell, len(row))
		for ci := 0; ci < len(row); ci++ {
			cells[ci] = l.cellOf(row[ci], s)
			if cells[ci].span > 1 {
				for k := 1; k < cells[ci].span && ci+k < len(row); k++ {
					cells[ci+k] = cell{skip: true}
				}
				ci += cells[ci].span - 1
			}
		}
		if len(cells) > columns {
			columns = len(cells)
		}
		tbl.rows = append(tbl.rows, cells)
	}
	if tbl.headerRows > len(tbl.rows) {
		tbl.headerRows = len(tbl.rows)
	}

	var widthDefs document.List
	if w, ok := tm.Get("widths"); ok {
		widthDefs, _ = w.(document.List)
	}
	left, _, right, _ := l.pdf.GetMargins()
	tbl.widths = l.columnWidths(tbl.rows, columns, widthDefs, l.pageW-left-right)
	return tbl, nil
}

func (l *layout) cellOf(n document.Node, parent style) cell {
	c := cell{span: 1, style: parent}
	switch v := n.(type) {
	case *document.Map:
		c.style = resolve(parent, v, l.named)
		if span, ok := number(v, "colSpan"); ok && span > 1 {
			c.span = int(span)
		}
		c.text = textOf(v)
	default:
		c.text = textOf(v)
	}
	return c
}

// columnWidths resolves pdfmake widths: numbers are fixed, "auto" fits the widest unspanned
// cell and "*" shares whatever is left.
func (l *layout) columnWidths(rows [][]cell, columns int, defs document.List, available float64) []float64 {
	widths := make([]float64, columns)
	kinds := make([]string, columns)
	for i := range kinds {
		kinds[i] = "*"
		if i < len(defs) {
			switch d := defs[i].(type) {
			case document.Scalar:
				if d.Type == document.ScalarNumber {
					kinds[i] = "fixed"
					widths[i] = d.Num
				} else if d.IsString() && d.Str == "auto" {
					kinds[i] = "auto"
				}
			}
		}
	}

	used := 0.0
	stars := 0
	for col, kind := range kinds {
		switch kind {
		case "auto":
			for _, row := range rows {
				if col >= len(row) || row[col].skip || row[col].span > 1 {
					continue
				}
				c := row[col]
				l.setFont(c.style)
				widest := 0.0
				for _, line := range strings.Split(c.text, "\n") {
					widest = math.Max(widest, l.pdf.GetStringWidth(l.tr(line)))
				}
				widths[col] = math.Max(widths[col], widest+2*cellPadding+2)
			}
			used += widths[col]
		case "fixed":
			used += widths[col]
		default:
			stars++
		}
	}

	if stars > 0 {
		share := math.Max((available-used)/float64(stars), 2*cellPadding+10)
		for col, kind := range kinds {
			if kind == "*" {
				widths[col] = share
			}
		}
	} else if used > available && used > 0 {
		scale := available / used
		for col := range widths {
			widths[col] *= scale
		}
	}
	return widths
}

func (tbl *tableSpec) spanWidth(col, span int) float64 {
	w := 0.0
	for i := col; i < col+span && i < len(tbl.widths); i++ {
		w += tbl.widths[i]
	}
	return w
}

func (l *layout) rowHeight(tbl *tableSpec, row []cell) float64 {
	h := 0.0
	for col, c := range row {
		if c.skip {
			continue
		}
		l.setFont(c.style)
		lines := l.wrap(c.text, tbl.spanWidth(col, c.span)-2*cellPadding)
		h = math.Max(h, float64(len(lines))*c.style.lineHeightPt()+2*cellPadding)
	}
	return h
}

func (l *layout) drawRow(tbl *tableSpec, index int, left, h float64) {
	row := tbl.rows[index]
	y := l.pdf.GetY()
	x := left
	for col, c := range row {
		if c.skip {
			continue
		}
		w := tbl.spanWidth(col, c.span)
		if c.style.fillColor != nil {
			l.pdf.SetFillColor(c.style.fillColor[0], c.style.fillColor[1], c.style.fillColor[2])
			l.pdf.Rect(x, y, w, h, "F")
		}
		if tbl.layout == "" {
			l.pdf.SetDrawColor(0, 0, 0)
			l.pdf.SetLineWidth(0.5)
			l.pdf.Rect(x, y, w, h, "D")
		}

		l.setFont(c.style)
		lineY := y + cellPadding
		for _, line := range l.wrap(c.text, w-2*cellPadding) {
			l.pdf.SetXY(x+cellPadding, lineY)
			l.pdf.CellFormat(w-2*cellPadding, c.style.lineHeightPt(), line, "", 0, c.style.align(), false, 0, "")
			lineY += c.style.lineHeightPt()
		}
		x += w
	}

	l.horizontalRule(tbl, index, left, y+h)
	l.pdf.SetXY(left, y+h)
}

// horizontalRule draws the line below row index for the named pdfmake layouts.
func (l *layout) horizontalRule(tbl *tableSpec, index int, left, y float64) {
	last := index == len(tbl.rows)-1
	header := index == tbl.headerRows-1
	width := tbl.spanWidth(0, len(tbl.widths))

	switch tbl.layout {
	case "lightHorizontalLines":
		if last {
			return
		}
		if header {
			l.pdf.SetDrawColor(0, 0, 0)
			l.pdf.SetLineWidth(1)
		} else {
			l.pdf.SetDrawColor(170, 170, 170)
			l.pdf.SetLineWidth(0.5)
		}
		l.pdf.Line(left, y, left+width, y)
	case "headerLineOnly":
		if header {
			l.pdf.SetDrawColor(0, 0, 0)
			l.pdf.SetLineWidth(1)
			l.pdf.Line(left, y, left+width, y)
		}
	}
}

// wrap breaks text into translated lines no wider than w in the current font. Words longer than
// a line are kept whole.
func (l *layout) wrap(text string, w float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := l.tr(words[0])
		for _, word := range words[1:] {
			candidate := current + " " + l.tr(word)
			if l.pdf.GetStringWidth(candidate) > w {
				lines = append(lines, current)
				current = l.tr(word)
				continue
			}
			current = candidate
		}
		lines = append(lines, current)
	}
	return lines
}
