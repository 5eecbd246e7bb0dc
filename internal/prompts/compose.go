package prompts

import (
	"fmt"
	"strings"
	"text/template"
)

// Params carries the run parameters substituted into prompt text.
type Params struct {
	Language     string
	DocumentType string
}

// Turn carries per-page values for stage turn texts.
type Turn struct {
	Language string
	Page     int
	Width    int
	Height   int
}

var templates = template.Must(parseAll())

func parseAll() (*template.Template, error) {
	root := template.New("prompts").Option("missingkey=error")
	for _, stage := range stages {
		if _, err := root.New(string(stage) + ".instructions").Parse(instructions[stage]); err != nil {
			return nil, err
		}
		if _, err := root.New(string(stage) + ".spec").Parse(specs[stage]); err != nil {
			return nil, err
		}
	}

	turns := map[string]string{
		"turn.translate.first":  firstTranslateTurn,
		"turn.translate.revise": reviseTranslateTurn,
		"turn.critique":         critiqueTurn,
	}
	for name, text := range turns {
		if _, err := root.New(name).Parse(text); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// Compose returns the system prompt for stage: its instructions followed by
// its output specification.
func Compose(stage Stage, params Params) (string, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return "", err
	}
	if params.Language == "" {
		return "", fmt.Errorf("%w: language", ErrMissingParam)
	}
	if params.DocumentType == "" {
		params.DocumentType = "legal document"
	}

	instr, err := execute(string(stage)+".instructions", params)
	if err != nil {
		return "", err
	}
	spec, err := execute(string(stage)+".spec", params)
	if err != nil {
		return "", err
	}
	return instr + "\n\n" + spec, nil
}

// FirstTranslate is the user turn that accompanies the page image.
func FirstTranslate(t Turn) string {
	return mustExecute("turn.translate.first", t)
}

// ReviseTranslate is the user turn for every translate cycle after the first.
func ReviseTranslate() string {
	return mustExecute("turn.translate.revise", Turn{})
}

// Critique is the user turn that accompanies the rendered screenshot.
func Critique(t Turn) string {
	return mustExecute("turn.critique", t)
}

func execute(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return b.String(), nil
}

func mustExecute(name string, data any) string {
	s, err := execute(name, data)
	if err != nil {
		panic(err)
	}
	return s
}
