package providers_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/scrivener/internal/providers"
)

var verdictSchema = providers.MustSchema("verdict", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"need_correction": map[string]any{"type": "boolean"},
		"reasoning":       map[string]any{"type": "string"},
	},
	"required":             []any{"need_correction", "reasoning"},
	"additionalProperties": false,
})

type verdict struct {
	NeedCorrection bool   `json:"need_correction"`
	Reasoning      string `json:"reasoning"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want verdict
	}{
		{
			name: "plain json",
			text: `{"need_correction": true, "reasoning": "table misaligned"}`,
			want: verdict{NeedCorrection: true, Reasoning: "table misaligned"},
		},
		{
			name: "fenced json",
			text: "Here you go:\n```json\n{\"need_correction\": false, \"reasoning\": \"\"}\n```",
			want: verdict{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := providers.Decode[verdict](providers.Response{Text: tt.text}, verdictSchema)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "I cannot help with that."},
		{"missing field", `{"need_correction": true}`},
		{"wrong type", `{"need_correction": "yes", "reasoning": "x"}`},
		{"extra field", `{"need_correction": true, "reasoning": "x", "score": 3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := providers.Decode[verdict](providers.Response{Text: tt.text}, verdictSchema)
			require.Error(t, err)
			assert.ErrorIs(t, err, providers.ErrSchemaMismatch)

			var schemaErr *providers.SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, "verdict", schemaErr.Schema)
		})
	}
}

func TestSchemaAccessors(t *testing.T) {
	assert.ElementsMatch(t, []string{"need_correction", "reasoning"}, verdictSchema.Required())

	props := verdictSchema.Properties()
	require.Len(t, props, 2)
	assert.Equal(t, "boolean", props["need_correction"]["type"])
}

func TestNewSchemaInvalid(t *testing.T) {
	_, err := providers.NewSchema("broken", map[string]any{"type": 42})
	assert.Error(t, err)
}
