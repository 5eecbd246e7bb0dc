package processes_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/scrivener/internal/processes"
	"github.com/JaimeStill/scrivener/internal/providers"
)

func status(s processes.Status) *processes.Status { return &s }

func TestApplyTimestamps(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var p processes.Process

	p.Apply(processes.Patch{Status: status(processes.StatusPending)}, t0)
	require.NotNil(t, p.StartTime)
	assert.Equal(t, t0, *p.StartTime)
	assert.Nil(t, p.EndTime)

	t1 := t0.Add(time.Minute)
	p.Apply(processes.Patch{Status: status(processes.StatusProcessing)}, t1)
	assert.Equal(t, t0, *p.StartTime, "start time is set once")

	t2 := t1.Add(time.Minute)
	p.Apply(processes.Patch{Status: status(processes.StatusCompleted)}, t2)
	require.NotNil(t, p.EndTime)
	assert.Equal(t, t2, *p.EndTime)
	assert.Equal(t, t2, p.UpdatedAt)

	t3 := t2.Add(time.Minute)
	p.Apply(processes.Patch{Status: status(processes.StatusTranslating)}, t3)
	assert.Nil(t, p.EndTime, "end time cleared when leaving a terminal status")
}

func TestApplyPartial(t *testing.T) {
	now := time.Now().UTC()
	msg := "Translate 1/2"
	progress := 50

	p := processes.Process{Status: processes.StatusTranslating, Message: "Translate 0/2"}
	p.Apply(processes.Patch{Message: &msg, Progress: &progress}, now)

	assert.Equal(t, processes.StatusTranslating, p.Status)
	assert.Equal(t, msg, p.Message)
	assert.Equal(t, 50, p.Progress)
	assert.Equal(t, now, p.UpdatedAt)
	assert.Nil(t, p.StartTime)
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range processes.ActiveStatuses {
		assert.False(t, s.Terminal(), s)
	}
	for _, s := range []processes.Status{processes.StatusCompleted, processes.StatusError, processes.StatusCanceled} {
		assert.True(t, s.Terminal(), s)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := processes.ParseStatus("translating")
	require.NoError(t, err)
	assert.Equal(t, processes.StatusTranslating, s)

	_, err = processes.ParseStatus("done")
	assert.ErrorIs(t, err, processes.ErrInvalidStatus)
}

func TestFiltersFromQuery(t *testing.T) {
	f, err := processes.FiltersFromQuery(url.Values{
		"status":  {"pending, error"},
		"adapter": {"gpt"},
	})
	require.NoError(t, err)
	assert.Equal(t, []processes.Status{processes.StatusPending, processes.StatusError}, f.Statuses)
	require.NotNil(t, f.Adapter)
	assert.Equal(t, "gpt", *f.Adapter)

	_, err = processes.FiltersFromQuery(url.Values{"status": {"pending,bogus"}})
	assert.ErrorIs(t, err, processes.ErrInvalidStatus)
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{processes.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", processes.ErrTerminal), http.StatusConflict},
		{processes.ErrNotCompleted, http.StatusConflict},
		{processes.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{processes.ErrInvalidConfig, http.StatusBadRequest},
		{providers.ErrUnknownAdapter, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, processes.MapHTTPStatus(tt.err), tt.err.Error())
	}
}
