package providers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noWait(int) time.Duration { return 0 }

func TestWithRetry(t *testing.T) {
	calls := 0
	got, err := withRetry(context.Background(), 3, noWait, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("unavailable")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhausted(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), 2, noWait, func() (string, error) {
		calls++
		return "", errors.New("unavailable")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnContextError(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), 5, noWait, func() (string, error) {
		calls++
		return "", context.Canceled
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, backoff(0))
	assert.Equal(t, 4*time.Second, backoff(2))
	assert.Equal(t, maxBackoff, backoff(10))
	assert.Equal(t, maxBackoff, backoff(80))
}

func TestBedrockMessagesMergeRoles(t *testing.T) {
	msgs, err := bedrockMessages([]Message{
		UserMessage(Text("translate")),
		UserMessage(Text("again")),
		AssistantText("done"),
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, types.ConversationRoleUser, msgs[0].Role)
	assert.Len(t, msgs[0].Content, 2)
	assert.Equal(t, types.ConversationRoleAssistant, msgs[1].Role)
}

func TestBedrockSystemIncludesSchema(t *testing.T) {
	s := MustSchema("out", map[string]any{"type": "object"})
	system := bedrockSystem(Request{System: "be precise", Schema: s})
	assert.Contains(t, system, "be precise")
	assert.Contains(t, system, `{"type":"object"}`)
}

func TestImagePartRequiresPath(t *testing.T) {
	_, err := bedrockMessages([]Message{UserMessage(Image(""))})
	assert.ErrorIs(t, err, ErrMissingImage)
}

func TestVertexContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o600))

	c, err := vertexContent(UserMessage(Text("look"), Image(path)))
	require.NoError(t, err)
	assert.Equal(t, "user", c.Role)
	require.Len(t, c.Parts, 2)

	c, err = vertexContent(AssistantText("ok"))
	require.NoError(t, err)
	assert.Equal(t, "model", c.Role)
}

func TestVertexSchema(t *testing.T) {
	s := vertexSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"html": map[string]any{"type": "string", "description": "page markup"},
		},
		"required": []any{"html"},
	})

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"html"}, s.Required)
	require.Contains(t, s.Properties, "html")
	assert.Equal(t, genai.TypeString, s.Properties["html"].Type)
	assert.Equal(t, "page markup", s.Properties["html"].Description)
}
