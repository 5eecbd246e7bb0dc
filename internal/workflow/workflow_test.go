package workflow_test

import (
	"context"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/scrivener/internal/markup"
	"github.com/JaimeStill/scrivener/internal/providers"
	"github.com/JaimeStill/scrivener/internal/workflow"
)

func TestValidatePages(t *testing.T) {
	valid := testPages(2)

	missing := testPages(2)
	missing[1].ImagePath = ""

	gap := testPages(3)
	gap[2].Number = 4

	zeroBased := testPages(1)
	zeroBased[0].Number = 0

	flat := testPages(1)
	flat[0].Dimensions.Height = 0

	tests := []struct {
		name  string
		pages []workflow.Page
		want  error
	}{
		{"valid", valid, nil},
		{"empty", nil, workflow.ErrNoPages},
		{"missing image", missing, workflow.ErrMissingImage},
		{"gap", gap, workflow.ErrPageSequence},
		{"zero based", zeroBased, workflow.ErrPageSequence},
		{"zero height", flat, workflow.ErrInvalidDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := workflow.ValidatePages(tt.pages)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestImageDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page-1.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 31, 47))))
	require.NoError(t, f.Close())

	dims, err := workflow.ImageDimensions(path)
	require.NoError(t, err)
	assert.Equal(t, markup.Dimensions{Width: 31, Height: 47}, dims)
}

func TestAssemble(t *testing.T) {
	results := []workflow.Result{
		{HTML: pageDoc(1, 1), Info: workflow.PageInfo{PageNumber: 1}},
		{HTML: "<div><p>broken", Info: workflow.PageInfo{PageNumber: 2}},
		{HTML: pageDoc(3, 1), Info: workflow.PageInfo{PageNumber: 3}},
	}

	doc, err := workflow.Assemble(results, "German")
	require.NoError(t, err)

	assert.Contains(t, doc, `lang="de"`)
	assert.Contains(t, doc, "page 1 v1")
	assert.Contains(t, doc, "page 3 v1")
	assert.Contains(t, doc, `data-page="2"`)
	assert.Less(t, strings.Index(doc, "page 1 v1"), strings.Index(doc, "page 3 v1"))
}

func TestAssembleUnknownLanguage(t *testing.T) {
	results := []workflow.Result{
		{HTML: pageDoc(1, 1), Info: workflow.PageInfo{PageNumber: 1}},
	}

	for _, name := range []string{"High Elvish", ""} {
		doc, err := workflow.Assemble(results, name)
		require.NoError(t, err)
		assert.Contains(t, doc, `<html lang="und">`, name)
		assert.NotContains(t, doc, `<html lang="en">`, name)
	}
}

func TestExecute(t *testing.T) {
	pages := testPages(3)

	var rasterDir string
	rasterizer := workflow.RasterizerFunc(func(_ context.Context, source, dir string) ([]workflow.Page, error) {
		assert.Equal(t, "/uploads/lease.pdf", source)
		rasterDir = dir
		return pages, nil
	})

	model := newFakeModel()
	model.approve = func(page, n int) bool { return true }

	registry := providers.NewRegistry("fake")
	require.NoError(t, registry.Add(providers.Config{Name: "fake", Concurrency: 2}, model))

	rt := &workflow.Runtime{
		Rasterizer: rasterizer,
		Renderer:   &fakeRenderer{},
		Adapters:   registry,
		TempDir:    t.TempDir(),
		Logger:     slog.New(slog.DiscardHandler),
	}

	var (
		infos      []workflow.PageInfo
		progress   []int
		translated bool
	)
	hooks := workflow.Hooks{
		Pages: func(_ context.Context, p []workflow.PageInfo) error {
			infos = p
			return nil
		},
		Progress: func(_ context.Context, done, total int) error {
			progress = append(progress, done)
			return nil
		},
		Translated: func(context.Context) error {
			translated = true
			return nil
		},
	}

	out, err := workflow.Execute(context.Background(), rt, workflow.Job{
		SourcePath: "/uploads/lease.pdf",
		Language:   "de",
		Cycles:     1,
	}, hooks)
	require.NoError(t, err)

	assert.Len(t, infos, 3)
	assert.Equal(t, infos, out.Pages)
	assert.Equal(t, []int{2, 3}, progress)
	assert.True(t, translated)

	assert.Contains(t, out.HTML, "page 1 v1")
	assert.Contains(t, out.HTML, "page 3 v1")
	assert.True(t, markup.Validate(out.HTML).Valid)

	_, statErr := os.Stat(rasterDir)
	assert.True(t, os.IsNotExist(statErr), "temp dir should be removed")
}

func TestExecuteUnknownAdapter(t *testing.T) {
	rt := &workflow.Runtime{
		Adapters: providers.NewRegistry("none"),
		Logger:   slog.New(slog.DiscardHandler),
	}

	_, err := workflow.Execute(context.Background(), rt, workflow.Job{Language: "de"}, workflow.Hooks{})
	assert.ErrorIs(t, err, providers.ErrUnknownAdapter)
}

func TestExecuteRasterizeFailure(t *testing.T) {
	registry := providers.NewRegistry("fake")
	require.NoError(t, registry.Add(providers.Config{Name: "fake", Concurrency: 1}, newFakeModel()))

	rt := &workflow.Runtime{
		Rasterizer: workflow.RasterizerFunc(func(context.Context, string, string) ([]workflow.Page, error) {
			return nil, workflow.ErrRasterizeFailed
		}),
		Adapters: registry,
		TempDir:  t.TempDir(),
		Logger:   slog.New(slog.DiscardHandler),
	}

	_, err := workflow.Execute(context.Background(), rt, workflow.Job{Language: "de"}, workflow.Hooks{})
	assert.ErrorIs(t, err, workflow.ErrRasterizeFailed)
}
