package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certhub/examdesk/internal/models"
)

func TestEffectiveRoomStatus(t *testing.T) {
	assert.Equal(t, models.RoomAvailable, EffectiveRoomStatus(models.RoomAvailable, 0, 2))
	assert.Equal(t, models.RoomAvailable, EffectiveRoomStatus(models.RoomAvailable, 1, 2))
	assert.Equal(t, models.RoomFull, EffectiveRoomStatus(models.RoomAvailable, 2, 2))
	assert.Equal(t, models.RoomMaintenance, EffectiveRoomStatus(models.RoomMaintenance, 2, 2))
	assert.Equal(t, models.RoomMaintenance, EffectiveRoomStatus(models.RoomMaintenance, 0, 2))
}

func TestMapTicket_RequiresIdentity(t *testing.T) {
	_, err := mapTicket(ticketRow{CandidateNumber: "SBD-00000001"})
	assert.ErrorIs(t, err, ErrMissingData)

	_, err = mapTicket(ticketRow{TicketID: "t-1"})
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestMapTicket_NullJoins(t *testing.T) {
	v, err := mapTicket(ticketRow{TicketID: "t-1", CandidateNumber: "SBD-00000001", Status: models.TicketNotTaken})
	require.NoError(t, err)
	assert.Nil(t, v.RoomID)
	assert.Empty(t, v.RoomName)
	assert.Empty(t, v.CustomerName)
}

func TestCustomerName_ByKind(t *testing.T) {
	ind, org := models.KindIndividual, models.KindOrganization
	ten, cty := "Nguyễn Văn An", "Công ty ABC"
	assert.Equal(t, ten, customerName(&ind, &ten, &cty))
	assert.Equal(t, cty, customerName(&org, &ten, &cty))
}
