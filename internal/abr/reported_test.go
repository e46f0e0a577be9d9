package abr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/playarr/internal/models"
)

func TestReportedStateDefaultsReady(t *testing.T) {
	src := NewReportedState()
	state, err := src.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, state)
}

func TestReportedStateReturnsLastReport(t *testing.T) {
	src := NewReportedState()

	src.Report(StateBuffering)
	state, err := src.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateBuffering, state)

	src.Report(StateReady)
	state, err = src.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, state)
}

func TestMonitorSamplesReportedState(t *testing.T) {
	m, clock, _ := newTestMonitor(t, autoPrefs(), models.QualityHigh, true)
	src := NewReportedState()
	m.player = src

	src.Report(StateBuffering)
	for i := 0; i < 6; i++ {
		step(t, m, clock)
	}

	rec := m.Current()
	require.NotNil(t, rec)
	assert.Equal(t, models.SeverityHigh, rec.Severity)
	assert.Equal(t, models.QualityMedium, rec.Quality)
}
