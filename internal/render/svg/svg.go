// Package svg renders a timeline board as a standalone SVG Gantt chart.
// Bar geometry comes from timeline.ComputeRect in pixel space; only the
// minimum visible width is applied here.
package svg

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/alexanderramin/roadmap/internal/timeline"
)

// Options controls chart layout. Zero values fall back to DefaultOptions.
type Options struct {
	Title        string
	LabelWidth   int
	RowHeight    int
	HeaderHeight int
	FontFamily   string
	FontSize     int
	// MinBarWidth is the narrowest a visible bar is drawn, in pixels.
	MinBarWidth float64
	// Today draws a marker line when it falls inside the window.
	Today time.Time
}

// DefaultOptions returns the layout used by `roadmap export svg`.
func DefaultOptions() Options {
	return Options{
		LabelWidth:   220,
		RowHeight:    28,
		HeaderHeight: 40,
		FontFamily:   "Helvetica, Arial, sans-serif",
		FontSize:     12,
		MinBarWidth:  timeline.DefaultMinVisibleWidth,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LabelWidth <= 0 {
		o.LabelWidth = d.LabelWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = d.RowHeight
	}
	if o.HeaderHeight <= 0 {
		o.HeaderHeight = d.HeaderHeight
	}
	if o.FontFamily == "" {
		o.FontFamily = d.FontFamily
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.MinBarWidth <= 0 {
		o.MinBarWidth = d.MinBarWidth
	}
	return o
}

const (
	marginX        = 10
	titleHeight    = 30
	gridColor      = "#e5e7eb"
	textColor      = "#111827"
	mutedColor     = "#6b7280"
	todayColor     = "#ef4444"
	backgroundFill = "#ffffff"
)

// Render draws every phase on board that overlaps w. Phases outside the
// window or with malformed dates are skipped; their project rows remain.
func Render(board *service.Board, w timeline.Window, opts Options) string {
	opts = opts.withDefaults()

	rows := 0
	for _, row := range board.Rows {
		rows += 1 + len(row.Phases)
	}

	top := opts.HeaderHeight
	if opts.Title != "" {
		top += titleHeight
	}
	chartX := float64(marginX + opts.LabelWidth)
	width := int(chartX+w.Span()) + marginX
	height := top + rows*opts.RowHeight + marginX

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.title-text { font-family: %s; font-size: %dpx; font-weight: bold; fill: %s; }
.header-text { font-family: %s; font-size: %dpx; fill: %s; }
.project-text { font-family: %s; font-size: %dpx; font-weight: bold; fill: %s; }
.phase-text { font-family: %s; font-size: %dpx; fill: %s; }
</style>
</defs>
`, width, height, backgroundFill,
		opts.FontFamily, opts.FontSize+4, textColor,
		opts.FontFamily, opts.FontSize-1, mutedColor,
		opts.FontFamily, opts.FontSize, textColor,
		opts.FontFamily, opts.FontSize, textColor)

	if opts.Title != "" {
		fmt.Fprintf(&sb, `<text class="title-text" x="%d" y="%d">%s</text>`+"\n", marginX, titleHeight-8, escapeXML(opts.Title))
	}

	writeGrid(&sb, w, chartX, top-opts.HeaderHeight, height-marginX, opts)

	y := top
	for _, row := range board.Rows {
		writeProjectRow(&sb, row.Project, y, opts)
		y += opts.RowHeight
		for _, ph := range row.Phases {
			writePhaseRow(&sb, row.Project, ph, w, chartX, y, opts)
			y += opts.RowHeight
		}
	}

	if !opts.Today.IsZero() && w.Contains(opts.Today) {
		x := chartX + timeline.Offset(opts.Today, w)
		fmt.Fprintf(&sb, `<line class="today" x1="%s" y1="%d" x2="%s" y2="%d" stroke="%s" stroke-width="2"/>`+"\n",
			px(x), top-opts.HeaderHeight/2, px(x), height-marginX, todayColor)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func writeGrid(sb *strings.Builder, w timeline.Window, chartX float64, headerY, bottom int, opts Options) {
	for _, col := range timeline.Columns(w) {
		x := chartX + timeline.Offset(col.Start, w)
		fmt.Fprintf(sb, `<line x1="%s" y1="%d" x2="%s" y2="%d" stroke="%s" stroke-width="1"/>`+"\n",
			px(x), headerY, px(x), bottom, gridColor)
		fmt.Fprintf(sb, `<text class="header-text" x="%s" y="%d">%s</text>`+"\n",
			px(x+4), headerY+opts.HeaderHeight-12, escapeXML(col.Label))
	}
	right := chartX + w.Span()
	fmt.Fprintf(sb, `<line x1="%s" y1="%d" x2="%s" y2="%d" stroke="%s" stroke-width="1"/>`+"\n",
		px(right), headerY, px(right), bottom, gridColor)
}

func writeProjectRow(sb *strings.Builder, p *domain.Project, y int, opts Options) {
	fmt.Fprintf(sb, `<text class="project-text" x="%d" y="%d">%s %s</text>`+"\n",
		marginX, y+opts.RowHeight/2+opts.FontSize/3, escapeXML(p.DisplayID()), escapeXML(p.Name))
}

func writePhaseRow(sb *strings.Builder, p *domain.Project, ph *domain.Phase, w timeline.Window, chartX float64, y int, opts Options) {
	fmt.Fprintf(sb, `<text class="phase-text" x="%d" y="%d">%s %s</text>`+"\n",
		marginX+12, y+opts.RowHeight/2+opts.FontSize/3, escapeXML(ph.DisplayID()), escapeXML(ph.Name))

	iv := ph.Interval()
	if !timeline.Visible(iv, w) {
		return
	}
	r := barRect(timeline.ComputeRect(iv, w), w, opts.MinBarWidth)

	barY := y + 5
	barH := opts.RowHeight - 10
	color := domain.CoalesceStr(ph.Color, p.Color, domain.DefaultProjectColor)
	fmt.Fprintf(sb, `<rect class="bar" data-phase="%s" x="%s" y="%d" width="%s" height="%d" rx="4" fill="%s" fill-opacity="0.35"/>`+"\n",
		escapeXML(ph.ID), px(chartX+r.Left), barY, px(r.Width), barH, color)
	if ph.Progress > 0 {
		done := r.Width * float64(min(ph.Progress, 100)) / 100
		fmt.Fprintf(sb, `<rect class="progress" x="%s" y="%d" width="%s" height="%d" rx="4" fill="%s"/>`+"\n",
			px(chartX+r.Left), barY, px(done), barH, color)
	}
}

// barRect applies the minimum visible width and keeps the widened bar
// inside the chart area.
func barRect(r timeline.Rect, w timeline.Window, minWidth float64) timeline.Rect {
	r = timeline.VisibleRect(r, min(minWidth, w.Span()))
	if over := r.Right() - w.Span(); over > 0 {
		r.Left = max(0, r.Left-over)
	}
	return r
}

func px(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
