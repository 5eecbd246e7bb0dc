package workflow

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// languageTag resolves a language given as a BCP 47 tag or an English name
// ("German") to a tag for the lang attribute. Unknown names yield "und".
func languageTag(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return language.Und.String()
	}

	if tag, err := language.Parse(name); err == nil {
		return tag.String()
	}

	namer := display.English.Languages()
	for _, tag := range display.Supported.Tags() {
		if strings.EqualFold(namer.Name(tag), name) {
			base, _ := tag.Base()
			return base.String()
		}
	}
	return language.Und.String()
}
