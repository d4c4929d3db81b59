// Package view renders the HTML fragments and pages served to the browser.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/microcosm-cc/bluemonday"

	"campkit/internal/backend"
)

const (
	// DefaultPrintTitle is the title of printable pages
	DefaultPrintTitle = "Impression"
	// DefaultStylesheet is linked from printable pages
	DefaultStylesheet = "/static/css/tailwind.css"

	unlimitedSpots = "illimitées"
)

var badgeTemplate = template.Must(template.New("badge").Parse(
	`{{if .Full}}<span class="badge badge-red">{{.Text}}</span>{{else}}<span class="badge badge-green">{{.Text}}</span>{{end}}`))

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
    <head>
        <meta charset="utf-8" />
        <title>{{.Title}}</title>
        <link rel="stylesheet" href="{{.Stylesheet}}" />
        <style>@media print { body { font-size: 12pt; } }</style>
    </head>
    <body>
        {{.Body}}
{{- if .AutoPrint}}
        <script>window.onload = function() { window.print(); window.close(); }</script>
{{- end}}
    </body>
</html>
`))

// BadgeText returns the label shown for an activity's capacity, or "" when
// the capacity is unknown.
func BadgeText(c *backend.Capacity) string {
	if c == nil {
		return ""
	}
	if c.IsFull {
		return fmt.Sprintf("Complet (%d/%s)", c.CurrentParticipants, optionalInt(c.TotalCapacity, "?"))
	}
	return "Places disponibles: " + optionalInt(c.AvailableSpots, unlimitedSpots)
}

// CapacityBadge renders the capacity badge. A nil capacity renders nothing
// so the page keeps whatever it already shows.
func CapacityBadge(c *backend.Capacity) (template.HTML, error) {
	if c == nil {
		return "", nil
	}
	var buf bytes.Buffer
	err := badgeTemplate.Execute(&buf, struct {
		Full bool
		Text string
	}{c.IsFull, BadgeText(c)})
	if err != nil {
		return "", fmt.Errorf("failed to render capacity badge: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func optionalInt(v *int, fallback string) string {
	if v == nil {
		return fallback
	}
	return strconv.Itoa(*v)
}

// PrintOptions customizes a printable page
type PrintOptions struct {
	Title     string
	AutoPrint bool
}

// Printer wraps HTML fragments into standalone printable documents
type Printer struct {
	policy     *bluemonday.Policy
	stylesheet string
}

// NewPrinter creates a Printer linking stylesheet (DefaultStylesheet when empty)
func NewPrinter(stylesheet string) *Printer {
	if stylesheet == "" {
		stylesheet = DefaultStylesheet
	}
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()
	return &Printer{policy: policy, stylesheet: stylesheet}
}

// Sanitize strips scripts, handlers and unsafe markup from fragment
func (p *Printer) Sanitize(fragment string) string {
	return p.policy.Sanitize(fragment)
}

// Page returns a printable HTML document around the sanitized fragment.
// With AutoPrint the page prints itself on load and closes.
func (p *Printer) Page(fragment string, opts PrintOptions) ([]byte, error) {
	title := opts.Title
	if title == "" {
		title = DefaultPrintTitle
	}

	var buf bytes.Buffer
	err := printTemplate.Execute(&buf, struct {
		Title      string
		Stylesheet string
		Body       template.HTML
		AutoPrint  bool
	}{
		Title:      title,
		Stylesheet: p.stylesheet,
		Body:       template.HTML(p.Sanitize(fragment)),
		AutoPrint:  opts.AutoPrint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render print page: %w", err)
	}
	return buf.Bytes(), nil
}
