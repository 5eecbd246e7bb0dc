package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/JaimeStill/scrivener/internal/markup"
	"github.com/JaimeStill/scrivener/internal/providers"
	"github.com/JaimeStill/scrivener/internal/render"
	"github.com/JaimeStill/scrivener/internal/workflow"
)

func testPages(n int) []workflow.Page {
	pages := make([]workflow.Page, n)
	for i := range pages {
		pages[i] = workflow.Page{
			ImagePath:  fmt.Sprintf("/scans/page-%d.png", i+1),
			Number:     i + 1,
			Dimensions: markup.Dimensions{Width: 800, Height: 1100},
		}
	}
	return pages
}

func pageDoc(page, version int) string {
	return fmt.Sprintf(
		`<!DOCTYPE html><html lang="de"><head><meta charset="utf-8"><title>p%d</title></head><body><p>page %d v%d</p></body></html>`,
		page, page, version,
	)
}

// pageOf returns the page number of the first image in the request.
func pageOf(req providers.Request) int {
	for _, msg := range req.Messages {
		for _, p := range msg.Parts {
			if p.Type != providers.PartImage {
				continue
			}
			var n int
			if _, err := fmt.Sscanf(filepath.Base(p.ImagePath), "page-%d.png", &n); err == nil {
				return n
			}
		}
	}
	return 0
}

// fakeModel answers translate and critique requests. Critique answers
// needCorrection for every page unless approve returns true.
type fakeModel struct {
	mu         sync.Mutex
	translates map[int]int
	critiques  map[int]int

	approve   func(page, critique int) bool
	before    func(page int)
	translate func(page, version int) (string, error)
}

func newFakeModel() *fakeModel {
	return &fakeModel{
		translates: make(map[int]int),
		critiques:  make(map[int]int),
	}
}

func (m *fakeModel) Generate(ctx context.Context, req providers.Request) (providers.Response, error) {
	page := pageOf(req)
	if m.before != nil {
		m.before(page)
	}

	switch req.Schema.Name {
	case workflow.TranslateSchema.Name:
		m.mu.Lock()
		m.translates[page]++
		version := m.translates[page]
		m.mu.Unlock()

		html := pageDoc(page, version)
		if m.translate != nil {
			var err error
			if html, err = m.translate(page, version); err != nil {
				return providers.Response{}, err
			}
		}
		data, _ := json.Marshal(workflow.TranslateResult{HTML: html})
		return providers.Response{Text: string(data)}, nil

	case workflow.CritiqueSchema.Name:
		m.mu.Lock()
		m.critiques[page]++
		n := m.critiques[page]
		m.mu.Unlock()

		approved := m.approve != nil && m.approve(page, n)
		data, _ := json.Marshal(workflow.CritiqueResult{
			NeedCorrection: !approved,
			Reasoning:      fmt.Sprintf("fix %d", n),
		})
		return providers.Response{Text: string(data)}, nil
	}

	return providers.Response{}, errors.New("unexpected schema")
}

func (m *fakeModel) counts(page int) (translates, critiques int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.translates[page], m.critiques[page]
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *fakeRenderer) Render(_ context.Context, req render.Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return filepath.Join(req.Dir, fmt.Sprintf("render-%d.png", r.calls)), nil
}
