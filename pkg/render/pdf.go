// Package render turns merged report documents into PDF bytes with go-pdf/fpdf. The accepted
// document vocabulary is a subset of pdfmake's: content, styles, defaultStyle, pageSize,
// pageOrientation and pageMargins at the root; text, stack, columns, ul, ol and table nodes.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/de-tools/work-reports/pkg/document"
	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
)

const (
	coreFamily = "Helvetica"
	utf8Family = "report"
)

// FontFiles names TrueType files for full Unicode output. With no Regular file the renderer uses
// the built-in Helvetica, which covers Windows-1252 only.
type FontFiles struct {
	Regular    string `mapstructure:"regular"`
	Bold       string `mapstructure:"bold"`
	Italic     string `mapstructure:"italic"`
	BoldItalic string `mapstructure:"bold_italic"`
}

type Options struct {
	Fonts    FontFiles `mapstructure:"fonts"`
	PageSize string    `mapstructure:"page_size"`
	Creator  string    `mapstructure:"creator"`
}

// PDF is safe for concurrent use. Font bytes are loaded once; each Render builds its own document.
type PDF struct {
	opts Options

	once    sync.Once
	initErr error
	fonts   map[string][]byte // fpdf style ("", "B", "I", "BI") -> ttf bytes
}

func NewPDF(opts Options) *PDF {
	if opts.PageSize == "" {
		opts.PageSize = "A4"
	}
	if opts.Creator == "" {
		opts.Creator = "work-reports"
	}
	return &PDF{opts: opts}
}

func (r *PDF) init() {
	r.once.Do(func() {
		if r.opts.Fonts.Regular == "" {
			return
		}
		files := map[string]string{
			"":   r.opts.Fonts.Regular,
			"B":  r.opts.Fonts.Bold,
			"I":  r.opts.Fonts.Italic,
			"BI": r.opts.Fonts.BoldItalic,
		}
		fonts := make(map[string][]byte, len(files))
		for fontStyle, path := range files {
			if path == "" {
				continue
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				r.initErr = fmt.Errorf("loading font %s: %w", path, err)
				return
			}
			fonts[fontStyle] = raw
		}
		r.fonts = fonts
	})
}

// Render lays out doc and returns the PDF bytes. styleOverrides replace the document's named
// styles key by key. Every failure is reported as domain.ErrRenderFailed.
func (r *PDF) Render(ctx context.Context, doc document.Node, styleOverrides *document.Map) (out []byte, err error) {
	r.init()
	if r.initErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, r.initErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, p)
		}
	}()

	l, err := r.newLayout(ctx, doc, styleOverrides)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	if err := l.run(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}

	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

type layout struct {
	ctx     context.Context
	pdf     *fpdf.Fpdf
	family  string
	tr      func(string) string
	content document.Node
	named   *document.Map
	base    style

	pageW, pageH float64
	left, right  float64
	top, bottom  float64
}

var pageSizes = map[string]string{
	"A3":     "A3",
	"A4":     "A4",
	"A5":     "A5",
	"LETTER": "Letter",
	"LEGAL":  "Legal",
}

func (r *PDF) newLayout(ctx context.Context, doc document.Node, overrides *document.Map) (*layout, error) {
	var root *document.Map
	switch v := doc.(type) {
	case *document.Map:
		if v == nil {
			return nil, fmt.Errorf("nil document")
		}
		root = v
	case document.List:
		root = document.NewMap(document.Entry{Key: "content", Value: v})
	default:
		return nil, fmt.Errorf("document root must be a map or a list, got %v", kindOf(doc))
	}

	content, ok := root.Get("content")
	if !ok {
		return nil, fmt.Errorf("document has no content")
	}

	var docStyles *document.Map
	if s, ok := root.Get("styles"); ok {
		docStyles, _ = s.(*document.Map)
	}
	named := document.Merge(docStyles, overrides)

	base := baseStyle()
	if d, ok := root.Get("defaultStyle"); ok {
		if dm, ok := d.(*document.Map); ok {
			base = resolve(base, dm, named).inherit()
		}
	}

	size := r.opts.PageSize
	if s, ok := str(root, "pageSize"); ok {
		size = s
	}
	fpdfSize, ok := pageSizes[strings.ToUpper(size)]
	if !ok {
		return nil, fmt.Errorf("unsupported page size %q", size)
	}
	orientation := "P"
	if o, ok := str(root, "pageOrientation"); ok && strings.EqualFold(o, "landscape") {
		orientation = "L"
	}

	left, top, right, bottom := 40.0, 60.0, 40.0, 60.0
	if m, ok := root.Get("pageMargins"); ok {
		left, top, right, bottom = box(m)
	}

	pdf := fpdf.New(orientation, "pt", fpdfSize, "")
	pdf.SetCreator(r.opts.Creator, true)
	pdf.SetMargins(left, top, right)
	pdf.SetAutoPageBreak(true, bottom)

	l := &layout{
		ctx:     ctx,
		pdf:     pdf,
		content: content,
		named:   named,
		base:    base,
		left:    left,
		right:   right,
		top:     top,
		bottom:  bottom,
	}
	l.pageW, l.pageH = pdf.GetPageSize()

	if len(r.fonts) > 0 {
		for fontStyle, raw := range r.fonts {
			pdf.AddUTF8FontFromBytes(utf8Family, fontStyle, raw)
		}
		// styles without their own file fall back to regular
		for _, fontStyle := range []string{"B", "I", "BI"} {
			if _, ok := r.fonts[fontStyle]; !ok {
				pdf.AddUTF8FontFromBytes(utf8Family, fontStyle, r.fonts[""])
			}
		}
		l.family = utf8Family
		l.tr = func(s string) string { return s }
	} else {
		l.family = coreFamily
		l.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	if pdf.Err() {
		return nil, pdf.Error()
	}
	return l, nil
}

func (l *layout) run() error {
	l.pdf.AddPage()
	if err := l.node(l.content, l.base); err != nil {
		return err
	}
	if l.pdf.Err() {
		return l.pdf.Error()
	}
	return nil
}

func (l *layout) setFont(s style) {
	l.pdf.SetFont(l.family, s.fontStyle(), s.fontSize)
	l.pdf.SetTextColor(s.color[0], s.color[1], s.color[2])
}

func (l *layout) node(n document.Node, parent style) error {
	if err := l.ctx.Err(); err != nil {
		return err
	}

	switch v := n.(type) {
	case nil:
		return fmt.Errorf("nil node")
	case document.Scalar:
		if v.Type == document.ScalarNull {
			return nil
		}
		l.paragraph(textOf(v), parent)
		return nil
	case document.Placeholder:
		return fmt.Errorf("unresolved placeholder %s", v.Token)
	case document.List:
		for _, child := range v {
			if err := l.node(child, parent); err != nil {
				return err
			}
		}
		return nil
	case *document.Map:
		return l.block(v, parent)
	default:
		return fmt.Errorf("unexpected node %T", n)
	}
}

func (l *layout) block(m *document.Map, parent style) error {
	if m == nil {
		return fmt.Errorf("nil map")
	}
	s := resolve(parent, m, l.named)

	if pb, ok := str(m, "pageBreak"); ok && pb == "before" {
		l.pdf.AddPage()
	}
	if s.marginTop > 0 {
		l.pdf.Ln(s.marginTop)
	}

	var err error
	switch {
	case has(m, "text"):
		t, _ := m.Get("text")
		l.paragraph(textOf(t), s)
	case has(m, "stack"):
		st, _ := m.Get("stack")
		err = l.node(st, s.inherit())
	case has(m, "columns"):
		cols, _ := m.Get("columns")
		err = l.columns(cols, s.inherit())
	case has(m, "ul"):
		items, _ := m.Get("ul")
		err = l.list(items, s.inherit(), false)
	case has(m, "ol"):
		items, _ := m.Get("ol")
		err = l.list(items, s.inherit(), true)
	case has(m, "table"):
		err = l.table(m, s.inherit())
	default:
		zerolog.Ctx(l.ctx).Debug().
			Strs("keys", keys(m)).
			Msg("skipping unsupported document node")
	}
	if err != nil {
		return err
	}

	if s.marginBottom > 0 {
		l.pdf.Ln(s.marginBottom)
	}
	if pb, ok := str(m, "pageBreak"); ok && pb == "after" {
		l.pdf.AddPage()
	}
	return nil
}

func (l *layout) paragraph(text string, s style) {
	l.setFont(s)
	l.pdf.SetX(l.currentLeft())
	l.pdf.MultiCell(0, s.lineHeightPt(), l.tr(text), "", s.align(), false)
}

func (l *layout) currentLeft() float64 {
	left, _, _, _ := l.pdf.GetMargins()
	return left
}

// columns lays children side by side in equal-width slots (or their numeric "width") and
// continues below the tallest one.
func (l *layout) columns(n document.Node, s style) error {
	cols, ok := n.(document.List)
	if !ok || len(cols) == 0 {
		return nil
	}

	left, _, right, _ := l.pdf.GetMargins()
	available := l.pageW - left - right

	widths := make([]float64, len(cols))
	fixed, stars := 0.0, 0
	for i, c := range cols {
		if cm, ok := c.(*document.Map); ok {
			if w, ok := number(cm, "width"); ok {
				widths[i] = w
				fixed += w
				continue
			}
		}
		stars++
	}
	if stars > 0 {
		share := (available - fixed - columnGap*float64(len(cols)-1)) / float64(stars)
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = share
			}
		}
	}

	startY := l.pdf.GetY()
	startPage := l.pdf.PageNo()
	maxY, maxPage := startY, startPage
	x := left
	for i, c := range cols {
		if l.pdf.PageNo() != startPage {
			l.pdf.SetPage(startPage)
		}
		l.pdf.SetLeftMargin(x)
		l.pdf.SetRightMargin(l.pageW - x - widths[i])
		l.pdf.SetXY(x, startY)
		if err := l.node(c, s); err != nil {
			return err
		}
		page, y := l.pdf.PageNo(), l.pdf.GetY()
		if page > maxPage || (page == maxPage && y > maxY) {
			maxPage, maxY = page, y
		}
		x += widths[i] + columnGap
	}

	l.pdf.SetLeftMargin(left)
	l.pdf.SetRightMargin(right)
	l.pdf.SetPage(maxPage)
	l.pdf.SetXY(left, maxY)
	return nil
}

func (l *layout) list(n document.Node, s style, ordered bool) error {
	items, ok := n.(document.List)
	if !ok {
		return nil
	}
	left, _, _, _ := l.pdf.GetMargins()
	const indent = 15.0

	for i, item := range items {
		marker := "•"
		if ordered {
			marker = fmt.Sprintf("%d.", i+1)
		}
		l.setFont(s)
		y := l.pdf.GetY()
		l.pdf.SetXY(left, y)
		l.pdf.CellFormat(indent, s.lineHeightPt(), l.tr(marker), "", 0, "L", false, 0, "")

		l.pdf.SetLeftMargin(left + indent)
		l.pdf.SetXY(left+indent, y)
		err := l.node(item, s)
		l.pdf.SetLeftMargin(left)
		if err != nil {
			return err
		}
	}
	l.pdf.SetX(left)
	return nil
}

func has(m *document.Map, key string) bool {
	_, ok := m.Get(key)
	return ok
}

func keys(m *document.Map) []string {
	entries := m.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}

func kindOf(n document.Node) string {
	if n == nil {
		return "nil"
	}
	return n.Kind().String()
}
