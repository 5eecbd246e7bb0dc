package markup_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/scrivener/internal/markup"
)

func TestJoinRoundTrip(t *testing.T) {
	originalBody, originalStyles := markup.Extract(wellFormed)
	require.NotEmpty(t, originalBody)
	require.Equal(t, []string{".clause { margin: 4px; }"}, originalStyles)

	merged, err := markup.Join([]markup.Page{{HTML: wellFormed, Number: 1}})
	require.NoError(t, err)

	body, styles := markup.Extract(merged)
	assert.Equal(t, originalBody, body)
	assert.Equal(t, originalStyles, styles)
	assert.True(t, markup.Validate(merged).Valid)
}

func TestJoinOrderAndOptions(t *testing.T) {
	page := func(n string) string {
		return `<html lang="en"><head><meta charset="utf-8"><title>t</title><style>.p` + n +
			` {}</style></head><body><p>page ` + n + `</p></body></html>`
	}

	merged, err := markup.Join(
		[]markup.Page{{HTML: page("1"), Number: 1}, {HTML: page("2"), Number: 2}, {HTML: page("3"), Number: 3}},
		markup.WithTitle("Deed"),
		markup.WithLang("es"),
	)
	require.NoError(t, err)

	assert.Contains(t, merged, `<html lang="es">`)
	assert.Contains(t, merged, `<title>Deed</title>`)

	first := strings.Index(merged, "page 1")
	second := strings.Index(merged, "page 2")
	third := strings.Index(merged, "page 3")
	assert.True(t, first < second && second < third, "pages out of order")

	_, styles := markup.Extract(merged)
	require.Len(t, styles, 1)
	assert.Equal(t, ".p1 {}\n.p2 {}\n.p3 {}", styles[0])
}

func TestJoinInvalidPageBecomesPlaceholder(t *testing.T) {
	broken := `<div id="x"><p>unterminated <script>alert(1)</script>`

	merged, err := markup.Join([]markup.Page{
		{HTML: wellFormed, Number: 1},
		{HTML: broken, Number: 2},
	})
	require.NoError(t, err)

	assert.Contains(t, merged, "Deed of Sale")
	assert.Contains(t, merged, `data-page="2"`)
	assert.Contains(t, merged, "missing charset declaration")
	assert.Contains(t, merged, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, merged, "<script>alert(1)</script>")
}

func TestJoinOnlyInvalidPagesStillProducesDocument(t *testing.T) {
	merged, err := markup.Join([]markup.Page{{HTML: "garbage", Number: 1}})
	require.NoError(t, err)
	assert.Contains(t, merged, "garbage")
}

func TestJoinNoContent(t *testing.T) {
	_, err := markup.Join(nil)
	assert.ErrorIs(t, err, markup.ErrNoContent)

	empty := `<html lang="en"><head><meta charset="utf-8"><title>t</title></head><body>  </body></html>`
	_, err = markup.Join([]markup.Page{{HTML: empty, Number: 1}})
	assert.ErrorIs(t, err, markup.ErrNoContent)
}

func TestExtractFragment(t *testing.T) {
	body, styles := markup.Extract("  <p>loose</p>\n")
	assert.Equal(t, "<p>loose</p>", body)
	assert.Nil(t, styles)
}
