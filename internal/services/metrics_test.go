package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func histogramCount(t *testing.T, workflow, outcome string) uint64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "examdesk_workflow_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["workflow"] == workflow && labels["outcome"] == outcome {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func TestWorkflowDuration_Observed(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	okBefore := histogramCount(t, "save_room", outcomeOK)
	rejBefore := histogramCount(t, "save_room", outcomeRejected)

	seedRoom(t, s, "M1", 5)
	_, err := s.SaveExamRoom(ctx, RoomInput{Name: "M2", Capacity: "zero"}, false)
	require.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, okBefore+1, histogramCount(t, "save_room", outcomeOK))
	assert.Equal(t, rejBefore+1, histogramCount(t, "save_room", outcomeRejected))
}
