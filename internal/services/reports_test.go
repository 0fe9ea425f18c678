package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certhub/examdesk/internal/models"
)

// TestRoomOccupancy verifies the single GROUP BY aggregation counts
// assigned and taken tickets per room and rolls them into the summary.
func TestRoomOccupancy(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cat := seedCatalog(t, s)
	_, tickets := approvedTickets(t, s, cat, 4)

	r1 := seedRoom(t, s, "P.101", 3)
	r2 := seedRoom(t, s, "P.102", 1)
	seedRoom(t, s, "P.103", 10)

	for _, tk := range tickets[:3] {
		require.NoError(t, s.AssignCandidateToRoom(ctx, tk.CandidateNumber, r1.ID))
	}
	require.NoError(t, s.AssignCandidateToRoom(ctx, tickets[3].CandidateNumber, r2.ID))
	_, err := s.SaveExamResults(ctx, ResultInput{CandidateNumber: tickets[0].CandidateNumber, Score: "60", Grader: "g", Proctor: "p"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateRoomStatus(ctx, r2.ID, models.RoomMaintenance))

	rows, sum, err := s.RoomOccupancy(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byName := map[string]OccupancyRow{}
	for _, r := range rows {
		byName[r.Name] = r
	}
	a := byName["P.101"]
	assert.EqualValues(t, 3, a.Assigned)
	assert.EqualValues(t, 1, a.Taken)
	assert.Equal(t, 0, a.Available)
	assert.Equal(t, 100, a.FillPercent)
	assert.Equal(t, models.RoomFull, a.Status)

	assert.Equal(t, models.RoomMaintenance, byName["P.102"].Status)
	assert.Equal(t, models.RoomAvailable, byName["P.103"].Status)
	assert.Equal(t, 10, byName["P.103"].Available)

	assert.Equal(t, 3, sum.Rooms)
	assert.Equal(t, 14, sum.Capacity)
	assert.EqualValues(t, 4, sum.Assigned)
	assert.EqualValues(t, 1, sum.Taken)
	assert.Equal(t, 1, sum.Full)
}

func TestTicketRoster_Filters(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cat := seedCatalog(t, s)
	_, tickets := approvedTickets(t, s, cat, 3)
	room := seedRoom(t, s, "P.5", 5)
	require.NoError(t, s.AssignCandidateToRoom(ctx, tickets[0].CandidateNumber, room.ID))

	all, err := s.TicketRoster(ctx, RosterFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, v := range all {
		assert.Equal(t, "TOEIC", v.Certificate)
		assert.Equal(t, "Công ty TNHH Minh Phát", v.CustomerName)
		assert.NotEmpty(t, v.CandidateName)
		assert.NotNil(t, v.ScheduledAt)
	}

	inRoom, err := s.TicketRoster(ctx, RosterFilter{RoomID: room.ID})
	require.NoError(t, err)
	require.Len(t, inRoom, 1)
	assert.Equal(t, "P.5", inRoom[0].RoomName)

	unassigned, err := s.TicketRoster(ctx, RosterFilter{SessionID: cat.Session.ID, Unassigned: true})
	require.NoError(t, err)
	assert.Len(t, unassigned, 2)

	other, err := s.TicketRoster(ctx, RosterFilter{SessionID: cat.Session2.ID})
	require.NoError(t, err)
	assert.Empty(t, other)

	q, err := s.TicketRoster(ctx, RosterFilter{Q: tickets[1].CandidateNumber[4:]})
	require.NoError(t, err)
	require.Len(t, q, 1)
	assert.Equal(t, tickets[1].CandidateNumber, q[0].CandidateNumber)

	taken, err := s.TicketRoster(ctx, RosterFilter{Status: models.TicketTaken})
	require.NoError(t, err)
	assert.Empty(t, taken)
}
