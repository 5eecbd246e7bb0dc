package markup

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoContent indicates that no page yielded any body content.
var ErrNoContent = errors.New("no page produced extractable body content")

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Dimensions is a page size in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Page is one translated page awaiting assembly.
type Page struct {
	HTML       string
	Number     int
	Dimensions Dimensions
}

type options struct {
	title string
	lang  string
}

// Option configures Join.
type Option func(*options)

// WithTitle sets the assembled document title.
func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// WithLang sets the lang attribute of the assembled document.
func WithLang(lang string) Option {
	return func(o *options) { o.lang = lang }
}

// Join merges pages into one HTML document in the order given. Pages that
// fail validation are replaced by a placeholder that carries the original
// markup and the issue list. Join fails only when no page yields body content.
func Join(pages []Page, opts ...Option) (string, error) {
	o := options{title: "Translated document", lang: "und"}
	for _, opt := range opts {
		opt(&o)
	}

	var bodies, styles []string
	for _, p := range pages {
		doc := p.HTML
		if report := Validate(doc); !report.Valid {
			placeholder, err := renderPlaceholder(p, report)
			if err != nil {
				return "", err
			}
			doc = placeholder
		}

		body, css := Extract(doc)
		if strings.TrimSpace(body) != "" {
			bodies = append(bodies, body)
		}
		styles = append(styles, css...)
	}

	if len(bodies) == 0 {
		return "", ErrNoContent
	}

	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "document.html", struct {
		Lang   string
		Title  string
		Styles template.CSS
		Body   template.HTML
	}{
		Lang:   o.lang,
		Title:  o.title,
		Styles: template.CSS(strings.Join(styles, "\n")),
		Body:   template.HTML(strings.Join(bodies, "\n")),
	})
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}

	return buf.String(), nil
}

// Extract returns the body content and style blocks of doc. A full document
// (one containing </html>) yields its <body> inner markup and the contents of
// every <style> element; anything else is returned whole as a fragment.
func Extract(doc string) (body string, styles []string) {
	if !strings.Contains(strings.ToLower(doc), "</html>") {
		return strings.TrimSpace(doc), nil
	}

	z := html.NewTokenizer(strings.NewReader(doc))
	offset, bodyStart, bodyEnd := 0, -1, -1
	inStyle := false

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "body":
				if bodyStart < 0 {
					bodyStart = offset
				}
			case "style":
				inStyle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "body":
				bodyEnd = start
			case "style":
				inStyle = false
			}
		case html.TextToken:
			if inStyle {
				if css := strings.TrimSpace(string(z.Raw())); css != "" {
					styles = append(styles, css)
				}
			}
		}
	}

	if bodyStart < 0 || bodyEnd < bodyStart {
		return "", styles
	}
	return strings.TrimSpace(doc[bodyStart:bodyEnd]), styles
}

func renderPlaceholder(p Page, report Report) (string, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "placeholder.html", struct {
		Number int
		Issues []Issue
		Raw    string
	}{
		Number: p.Number,
		Issues: report.Issues,
		Raw:    p.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("render placeholder for page %d: %w", p.Number, err)
	}
	return buf.String(), nil
}
