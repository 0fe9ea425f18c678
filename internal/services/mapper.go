package services

import (
	"fmt"
	"time"

	"github.com/certhub/examdesk/internal/models"
)

// RoomView is an exam room with its live occupancy.
type RoomView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Building        string `json:"building"`
	Capacity        int    `json:"capacity"`
	Status          string `json:"status"`           // stored: available | maintenance
	EffectiveStatus string `json:"effective_status"` // available | full | maintenance
	AssignedCount   int64  `json:"assigned_count"`
	Note            string `json:"note"`
}

// EffectiveRoomStatus derives "full" from the count; maintenance wins.
func EffectiveRoomStatus(stored string, assigned int64, capacity int) string {
	if stored == models.RoomMaintenance {
		return models.RoomMaintenance
	}
	if assigned >= int64(capacity) {
		return models.RoomFull
	}
	return models.RoomAvailable
}

func MapRoom(r models.ExamRoom, assigned int64) RoomView {
	return RoomView{
		ID:              r.ID,
		Name:            r.Name,
		Building:        r.Building,
		Capacity:        r.Capacity,
		Status:          r.Status,
		EffectiveStatus: EffectiveRoomStatus(r.Status, assigned, r.Capacity),
		AssignedCount:   assigned,
		Note:            r.Note,
	}
}

// ticketRow is the joined shape selected by ticketQuery.
type ticketRow struct {
	TicketID        string
	CandidateNumber string
	Status          string
	ExtensionCount  int
	RegistrationID  uint
	SessionID       uint
	RoomID          *uint
	RoomName        *string
	CandidateID     uint
	CandidateName   *string
	CustomerID      uint
	CustomerKind    *string
	HoTen           *string
	OrgName         *string
	ScheduledAt     *time.Time
	Location        *string
	CertificateCode *string
}

type TicketView struct {
	TicketID        string     `json:"ticket_id"`
	CandidateNumber string     `json:"candidate_number"`
	Status          string     `json:"status"`
	ExtensionCount  int        `json:"extension_count"`
	RegistrationID  uint       `json:"registration_id"`
	SessionID       uint       `json:"session_id"`
	RoomID          *uint      `json:"room_id"`
	RoomName        string     `json:"room_name,omitempty"`
	CandidateID     uint       `json:"candidate_id"`
	CandidateName   string     `json:"candidate_name"`
	CustomerID      uint       `json:"customer_id"`
	CustomerName    string     `json:"customer_name"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	Location        string     `json:"location,omitempty"`
	Certificate     string     `json:"certificate,omitempty"`
}

func mapTicket(r ticketRow) (TicketView, error) {
	if r.TicketID == "" || r.CandidateNumber == "" {
		return TicketView{}, fmt.Errorf("ticket row without id or candidate number: %w", ErrMissingData)
	}
	return TicketView{
		TicketID:        r.TicketID,
		CandidateNumber: r.CandidateNumber,
		Status:          r.Status,
		ExtensionCount:  r.ExtensionCount,
		RegistrationID:  r.RegistrationID,
		SessionID:       r.SessionID,
		RoomID:          r.RoomID,
		RoomName:        deref(r.RoomName),
		CandidateID:     r.CandidateID,
		CandidateName:   deref(r.CandidateName),
		CustomerID:      r.CustomerID,
		CustomerName:    customerName(r.CustomerKind, r.HoTen, r.OrgName),
		ScheduledAt:     r.ScheduledAt,
		Location:        deref(r.Location),
		Certificate:     deref(r.CertificateCode),
	}, nil
}

type registrationRow struct {
	ID              uint
	Status          string
	CreatedAt       time.Time
	DecidedAt       *time.Time
	CustomerID      uint
	CustomerKind    *string
	HoTen           *string
	OrgName         *string
	SessionID       uint
	ScheduledAt     *time.Time
	CertificateCode *string
	Tickets         int64
}

type RegistrationView struct {
	ID           uint       `json:"id"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	CustomerID   uint       `json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	SessionID    uint       `json:"session_id"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	Certificate  string     `json:"certificate,omitempty"`
	Tickets      int64      `json:"tickets"`
}

func mapRegistration(r registrationRow) RegistrationView {
	return RegistrationView{
		ID:           r.ID,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		DecidedAt:    r.DecidedAt,
		CustomerID:   r.CustomerID,
		CustomerName: customerName(r.CustomerKind, r.HoTen, r.OrgName),
		SessionID:    r.SessionID,
		ScheduledAt:  r.ScheduledAt,
		Certificate:  deref(r.CertificateCode),
		Tickets:      r.Tickets,
	}
}

type extensionRow struct {
	ID              uint
	Status          string
	Reason          string
	SpecialCase     bool
	CreatedAt       time.Time
	DecidedAt       *time.Time
	TicketID        string
	CandidateNumber *string
	FromSessionID   *uint
	NewSessionID    uint
}

type ExtensionView struct {
	ID              uint       `json:"id"`
	Status          string     `json:"status"`
	Reason          string     `json:"reason"`
	SpecialCase     bool       `json:"special_case"`
	CreatedAt       time.Time  `json:"created_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	TicketID        string     `json:"ticket_id"`
	CandidateNumber string     `json:"candidate_number"`
	CurrentSession  uint       `json:"current_session_id"`
	NewSessionID    uint       `json:"new_session_id"`
}

func mapExtension(r extensionRow) ExtensionView {
	v := ExtensionView{
		ID:              r.ID,
		Status:          r.Status,
		Reason:          r.Reason,
		SpecialCase:     r.SpecialCase,
		CreatedAt:       r.CreatedAt,
		DecidedAt:       r.DecidedAt,
		TicketID:        r.TicketID,
		CandidateNumber: deref(r.CandidateNumber),
		NewSessionID:    r.NewSessionID,
	}
	if r.FromSessionID != nil {
		v.CurrentSession = *r.FromSessionID
	}
	return v
}

func customerName(kind, hoTen, orgName *string) string {
	c := models.Customer{Kind: deref(kind), HoTen: deref(hoTen), OrgName: deref(orgName)}
	return c.DisplayName()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
