package providers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/scrivener/internal/providers"
)

func echo(text string) providers.Model {
	return providers.ModelFunc(func(ctx context.Context, req providers.Request) (providers.Response, error) {
		return providers.Response{Text: text}, nil
	})
}

func TestRegistryGet(t *testing.T) {
	r := providers.NewRegistry("primary")
	require.NoError(t, r.Add(providers.Config{Name: "primary", Provider: providers.ProviderOpenAI}, echo("a")))
	require.NoError(t, r.Add(providers.Config{Name: "backup", Provider: providers.ProviderBedrock}, echo("b")))

	a, err := r.Get("")
	require.NoError(t, err)
	assert.Equal(t, "primary", a.Config.Name)

	b, err := r.Get("backup")
	require.NoError(t, err)
	resp, err := b.Model.Generate(context.Background(), providers.Request{})
	require.NoError(t, err)
	assert.Equal(t, "b", resp.Text)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, providers.ErrUnknownAdapter)

	names := []string{}
	for _, cfg := range r.List() {
		names = append(names, cfg.Name)
	}
	assert.Equal(t, []string{"primary", "backup"}, names)
}

func TestRegistryDuplicate(t *testing.T) {
	r := providers.NewRegistry("a")
	require.NoError(t, r.Add(providers.Config{Name: "a"}, echo("")))
	assert.ErrorIs(t, r.Add(providers.Config{Name: "a"}, echo("")), providers.ErrDuplicateName)
}

func TestRegistryTimeout(t *testing.T) {
	slow := providers.ModelFunc(func(ctx context.Context, req providers.Request) (providers.Response, error) {
		select {
		case <-ctx.Done():
			return providers.Response{}, ctx.Err()
		case <-time.After(time.Second):
			return providers.Response{Text: "late"}, nil
		}
	})

	r := providers.NewRegistry("slow")
	require.NoError(t, r.Add(providers.Config{Name: "slow", Timeout: "20ms"}, slow))

	a, err := r.Get("slow")
	require.NoError(t, err)

	_, err = a.Model.Generate(context.Background(), providers.Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpenWithoutAdapters(t *testing.T) {
	_, err := providers.Open(context.Background(), nil, "", nil)
	assert.ErrorIs(t, err, providers.ErrNoAdapters)
}
