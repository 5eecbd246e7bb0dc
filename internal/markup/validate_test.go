package markup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/scrivener/internal/markup"
)

const wellFormed = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>Acte de vente</title>
<style>
.clause { margin: 4px; }
</style>
</head>
<body>
<section id="p1"><h1>Deed of Sale</h1><p class="clause">The undersigned<br/>agree.</p></section>
<div id="sig"><img src="sig.png"></div>
</body>
</html>`

func TestValidateWellFormed(t *testing.T) {
	report := markup.Validate(wellFormed)

	assert.True(t, report.Valid)
	assert.Empty(t, report.Issues)
}

func TestValidateIssues(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		valid    bool
		messages []string
	}{
		{
			name:  "fragment",
			doc:   `<div>hello</div>`,
			valid: false,
			messages: []string{
				"missing <html> element",
				"missing <head> element",
				"missing <body> element",
				"missing <title> element",
				"missing charset declaration",
			},
		},
		{
			name:     "missing lang is a warning",
			doc:      `<html><head><meta charset="utf-8"><title>t</title></head><body><p>x</p></body></html>`,
			valid:    true,
			messages: []string{"missing lang attribute on <html>"},
		},
		{
			name:     "http-equiv charset",
			doc:      `<html lang="en"><head><meta http-equiv="Content-Type" content="text/html; charset=utf-8"><title>t</title></head><body></body></html>`,
			valid:    true,
			messages: nil,
		},
		{
			name:     "duplicate id",
			doc:      `<html lang="en"><head><meta charset="utf-8"><title>t</title></head><body><p id="a">1</p><p id="a">2</p></body></html>`,
			valid:    false,
			messages: []string{`duplicate id "a" (2 occurrences)`},
		},
		{
			name:     "unbalanced div",
			doc:      `<html lang="en"><head><meta charset="utf-8"><title>t</title></head><body><div><div>x</div></body></html>`,
			valid:    false,
			messages: []string{"unbalanced <div>: 2 opening, 1 closing"},
		},
		{
			name:     "self-closing block tag exempt",
			doc:      `<html lang="en"><head><meta charset="utf-8"><title>t</title></head><body><div/><p>x</p></body></html>`,
			valid:    true,
			messages: nil,
		},
		{
			name:     "two bodies",
			doc:      `<html lang="en"><head><meta charset="utf-8"><title>t</title></head><body></body><body></body></html>`,
			valid:    false,
			messages: []string{"expected exactly one <body> element, found 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := markup.Validate(tt.doc)

			assert.Equal(t, tt.valid, report.Valid)

			var got []string
			for _, issue := range report.Issues {
				got = append(got, issue.Message)
			}
			assert.Equal(t, tt.messages, got)
		})
	}
}

func TestValidateSeverities(t *testing.T) {
	report := markup.Validate(`<html><body><div></body></html>`)

	require.False(t, report.Valid)
	assert.Len(t, report.Warnings(), 1)
	for _, issue := range report.Errors() {
		assert.Equal(t, markup.SeverityError, issue.Severity)
	}
}

func TestValidateDeterministic(t *testing.T) {
	doc := `<html><body><p id="b"></p><p id="b"></p><p id="a"></p><p id="a"></p><ul><li></ul><table></body></html>`

	first := markup.Validate(doc)
	second := markup.Validate(doc)

	assert.Equal(t, first, second)
}
