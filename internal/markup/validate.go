// Package markup checks the structure of generated HTML pages and merges
// them into a single document.
package markup

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Report is the outcome of Validate. Valid is false when any issue is an error.
type Report struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// Errors returns the error-level issues.
func (r Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-level issues.
func (r Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r Report) filter(s Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}

var singletons = []string{"html", "head", "body", "title"}

var balanced = map[string]bool{
	"article": true, "aside": true, "blockquote": true, "div": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "tbody": true,
	"td": true, "tfoot": true, "th": true, "thead": true, "tr": true, "ul": true,
}

type scan struct {
	counts  map[string]int
	opened  map[string]int
	closed  map[string]int
	ids     map[string]int
	charset bool
	lang    bool
}

// Validate checks that doc is a structurally sound HTML document. The result
// depends only on doc.
func Validate(doc string) Report {
	s := scan{
		counts: make(map[string]int),
		opened: make(map[string]int),
		closed: make(map[string]int),
		ids:    make(map[string]int),
	}

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken:
			s.start(z, true)
		case html.SelfClosingTagToken:
			s.start(z, false)
		case html.EndTagToken:
			name, _ := z.TagName()
			if balanced[string(name)] {
				s.closed[string(name)]++
			}
		}
	}

	return s.report()
}

func (s *scan) start(z *html.Tokenizer, open bool) {
	name, hasAttr := z.TagName()
	tag := string(name)

	s.counts[tag]++
	if open && balanced[tag] {
		s.opened[tag]++
	}

	var httpEquiv, content bool
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		v := strings.TrimSpace(string(val))

		switch string(key) {
		case "id":
			if v != "" {
				s.ids[v]++
			}
		case "lang":
			if tag == "html" && v != "" {
				s.lang = true
			}
		case "charset":
			if tag == "meta" && v != "" {
				s.charset = true
			}
		case "http-equiv":
			httpEquiv = strings.EqualFold(v, "content-type")
		case "content":
			content = strings.Contains(strings.ToLower(v), "charset=")
		}
	}

	if tag == "meta" && httpEquiv && content {
		s.charset = true
	}
}

func (s *scan) report() Report {
	var issues []Issue
	fail := func(format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
	}

	for _, tag := range singletons {
		switch n := s.counts[tag]; {
		case n == 0:
			fail("missing <%s> element", tag)
		case n > 1:
			fail("expected exactly one <%s> element, found %d", tag, n)
		}
	}

	if !s.charset {
		fail("missing charset declaration")
	}

	for _, id := range slices.Sorted(maps.Keys(s.ids)) {
		if n := s.ids[id]; n > 1 {
			fail("duplicate id %q (%d occurrences)", id, n)
		}
	}

	for _, tag := range slices.Sorted(maps.Keys(balanced)) {
		if o, c := s.opened[tag], s.closed[tag]; o != c {
			fail("unbalanced <%s>: %d opening, %d closing", tag, o, c)
		}
	}

	valid := len(issues) == 0

	if s.counts["html"] > 0 && !s.lang {
		issues = append(issues, Issue{Severity: SeverityWarning, Message: "missing lang attribute on <html>"})
	}

	return Report{Valid: valid, Issues: issues}
}
