package services

import (
	"context"
	"strings"
	"time"

	"github.com/certhub/examdesk/internal/models"
)

type OccupancyRow struct {
	RoomID      uint   `json:"room_id"`
	Name        string `json:"name"`
	Building    string `json:"building"`
	Capacity    int    `json:"capacity"`
	Assigned    int64  `json:"assigned"`
	Taken       int64  `json:"taken"`
	Available   int    `json:"available"`
	FillPercent int    `json:"fill_percent"`
	Status      string `json:"status"`
}

type OccupancySummary struct {
	Rooms    int   `json:"rooms"`
	Capacity int   `json:"capacity"`
	Assigned int64 `json:"assigned"`
	Taken    int64 `json:"taken"`
	Full     int   `json:"full"`
}

// RoomOccupancy aggregates ticket counts per room in one GROUP BY.
func (s *Service) RoomOccupancy(ctx context.Context) ([]OccupancyRow, OccupancySummary, error) {
	conn := s.conn(ctx)
	var sum OccupancySummary

	var rooms []models.ExamRoom
	if err := conn.Order("building asc, name asc").Find(&rooms).Error; err != nil {
		return nil, sum, storeErr("list rooms", err)
	}
	aggs, err := assignedByRoom(conn)
	if err != nil {
		return nil, sum, err
	}

	rows := make([]OccupancyRow, 0, len(rooms))
	for _, r := range rooms {
		agg := aggs[r.ID]
		avail := r.Capacity - int(agg.Assigned)
		if avail < 0 {
			avail = 0
		}
		fill := 0
		if r.Capacity > 0 {
			fill = int(agg.Assigned * 100 / int64(r.Capacity))
		}
		status := EffectiveRoomStatus(r.Status, agg.Assigned, r.Capacity)
		rows = append(rows, OccupancyRow{
			RoomID:      r.ID,
			Name:        r.Name,
			Building:    r.Building,
			Capacity:    r.Capacity,
			Assigned:    agg.Assigned,
			Taken:       agg.Taken,
			Available:   avail,
			FillPercent: fill,
			Status:      status,
		})

		sum.Capacity += r.Capacity
		sum.Assigned += agg.Assigned
		sum.Taken += agg.Taken
		if status == models.RoomFull {
			sum.Full++
		}
	}
	sum.Rooms = len(rooms)
	return rows, sum, nil
}

type RosterFilter struct {
	SessionID  uint
	RoomID     uint
	Status     string // not_taken | taken
	Unassigned bool
	Q          string
}

// TicketRoster lists tickets joined with candidate, customer, session and room.
func (s *Service) TicketRoster(ctx context.Context, f RosterFilter) ([]TicketView, error) {
	q := s.conn(ctx).Table("exam_tickets AS t").
		Select(`t.ticket_id, t.candidate_number, t.status, t.extension_count,
		        t.registration_id, t.session_id, t.room_id, rm.name AS room_name,
		        t.candidate_id, cd.full_name AS candidate_name,
		        t.customer_id, cu.kind AS customer_kind, cu.ho_ten, cu.org_name,
		        se.scheduled_at, se.location, ce.code AS certificate_code`).
		Joins("LEFT JOIN exam_rooms rm ON rm.id = t.room_id").
		Joins("LEFT JOIN candidates cd ON cd.id = t.candidate_id").
		Joins("LEFT JOIN customers cu ON cu.id = t.customer_id").
		Joins("LEFT JOIN exam_sessions se ON se.id = t.session_id").
		Joins("LEFT JOIN certificates ce ON ce.id = se.certificate_id")

	if f.SessionID > 0 {
		q = q.Where("t.session_id = ?", f.SessionID)
	}
	if f.RoomID > 0 {
		q = q.Where("t.room_id = ?", f.RoomID)
	}
	if f.Unassigned {
		q = q.Where("t.room_id IS NULL")
	}
	switch f.Status {
	case models.TicketNotTaken, models.TicketTaken:
		q = q.Where("t.status = ?", f.Status)
	}
	if needle := strings.TrimSpace(f.Q); needle != "" {
		like := "%" + strings.ToLower(needle) + "%"
		q = q.Where(`
			LOWER(t.candidate_number) LIKE ? OR
			LOWER(cd.full_name)       LIKE ? OR
			LOWER(cu.ho_ten)          LIKE ? OR
			LOWER(cu.org_name)        LIKE ?`, like, like, like, like)
	}

	var rows []ticketRow
	if err := q.Order("se.scheduled_at ASC, t.candidate_number ASC").Scan(&rows).Error; err != nil {
		return nil, storeErr("ticket roster", err)
	}
	out := make([]TicketView, 0, len(rows))
	for _, r := range rows {
		v, err := mapTicket(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type LedgerRow struct {
	CandidateNumber   string    `json:"candidate_number"`
	CandidateName     string    `json:"candidate_name"`
	Certificate       string    `json:"certificate"`
	Score             float64   `json:"score"`
	Passed            bool      `json:"passed"`
	CertificateStatus string    `json:"certificate_status"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// CertificateLedgerReport lists ledger rows with certificate and receipt status.
func (s *Service) CertificateLedgerReport(ctx context.Context) ([]LedgerRow, error) {
	type row struct {
		CandidateNumber   string
		CandidateName     *string
		Certificate       *string
		Score             float64
		Passed            bool
		CertificateStatus *string
		RecordedAt        time.Time
	}
	var rows []row
	err := s.conn(ctx).Table("certificate_ledgers AS l").
		Select(`l.candidate_number, cd.full_name AS candidate_name, ce.code AS certificate,
		        l.score, l.passed, r.certificate_status, l.created_at AS recorded_at`).
		Joins("LEFT JOIN certificates ce ON ce.id = l.certificate_id").
		Joins("LEFT JOIN exam_results r ON r.candidate_number = l.candidate_number").
		Joins("LEFT JOIN exam_tickets t ON t.candidate_number = l.candidate_number").
		Joins("LEFT JOIN candidates cd ON cd.id = t.candidate_id").
		Order("l.created_at DESC, l.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr("ledger report", err)
	}
	out := make([]LedgerRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, LedgerRow{
			CandidateNumber:   r.CandidateNumber,
			CandidateName:     deref(r.CandidateName),
			Certificate:       deref(r.Certificate),
			Score:             r.Score,
			Passed:            r.Passed,
			CertificateStatus: deref(r.CertificateStatus),
			RecordedAt:        r.RecordedAt,
		})
	}
	return out, nil
}
