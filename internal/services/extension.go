package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/certhub/examdesk/internal/models"
)

type ExtensionInput struct {
	CandidateNumber string `validate:"required"`
	NewSessionID    uint   `validate:"required"`
	Reason          string `validate:"required,max=1000"`
	SpecialCase     bool
}

// CreateExtension files a pending request to move a ticket to another
// session. A ticket carries at most models.MaxExtensions forms over its
// lifetime whatever their outcome; the counter is bumped with a guarded
// UPDATE so the limit holds under concurrent requests.
func (s *Service) CreateExtension(ctx context.Context, in ExtensionInput) (form models.ExtensionForm, err error) {
	defer func(start time.Time) { s.finish(ctx, "create_extension", start, err) }(time.Now())

	in.CandidateNumber = strings.TrimSpace(in.CandidateNumber)
	in.Reason = strings.TrimSpace(in.Reason)
	if err = validateStruct(in); err != nil {
		return form, err
	}

	err = s.tx(ctx, func(tx *gorm.DB) error {
		found, err := findTicket(tx, in.CandidateNumber)
		if err != nil {
			return err
		}
		ticket, err := lockTicket(tx, found.TicketID)
		if err != nil {
			return lookupErr("ticket", err)
		}
		if err := tx.First(&models.ExamSession{}, in.NewSessionID).Error; err != nil {
			return requireErr("exam session", err)
		}
		if ticket.SessionID == in.NewSessionID {
			return fmt.Errorf("%w: ticket is already in session %d", ErrValidation, in.NewSessionID)
		}

		res := tx.Model(&models.ExamTicket{}).
			Where("ticket_id = ? AND extension_count < ?", ticket.TicketID, models.MaxExtensions).
			Update("extension_count", gorm.Expr("extension_count + 1"))
		if res.Error != nil {
			return storeErr("count extension", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: ticket %s already has %d extension forms",
				ErrExtensionLimitExceeded, ticket.CandidateNumber, models.MaxExtensions)
		}

		form = models.ExtensionForm{
			TicketID:     ticket.TicketID,
			NewSessionID: in.NewSessionID,
			Reason:       in.Reason,
			SpecialCase:  in.SpecialCase,
			Status:       models.StatusPending,
		}
		if err := tx.Create(&form).Error; err != nil {
			return storeErr("create extension", err)
		}
		return nil
	})
	return form, err
}

// ApproveExtension moves the ticket to the requested session. The ticket's
// registration must already be approved. Seat counts are not touched.
func (s *Service) ApproveExtension(ctx context.Context, id uint) (err error) {
	defer func(start time.Time) { s.finish(ctx, "approve_extension", start, err) }(time.Now())

	return s.tx(ctx, func(tx *gorm.DB) error {
		var form models.ExtensionForm
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&form, id).Error; err != nil {
			return lookupErr("extension", err)
		}
		if form.Status != models.StatusPending {
			return fmt.Errorf("extension %d is %s: %w", id, form.Status, ErrInvalidTransition)
		}
		ticket, err := lockTicket(tx, form.TicketID)
		if err != nil {
			return requireErr("ticket", err)
		}
		var reg models.RegistrationForm
		if err := tx.First(&reg, ticket.RegistrationID).Error; err != nil {
			return requireErr("registration", err)
		}
		if reg.Status != models.StatusApproved {
			return fmt.Errorf("registration %d is %s: %w", reg.ID, reg.Status, ErrRegistrationNotApproved)
		}

		if err := tx.Model(&models.ExamTicket{}).
			Where("ticket_id = ?", ticket.TicketID).
			Update("session_id", form.NewSessionID).Error; err != nil {
			return storeErr("move ticket", err)
		}
		return s.decide(tx, &models.ExtensionForm{}, "extension", form.ID, models.StatusApproved)
	})
}

// RejectExtension closes a pending extension. The ticket keeps its count.
func (s *Service) RejectExtension(ctx context.Context, id uint) (err error) {
	defer func(start time.Time) { s.finish(ctx, "reject_extension", start, err) }(time.Now())

	return s.tx(ctx, func(tx *gorm.DB) error {
		return s.decide(tx, &models.ExtensionForm{}, "extension", id, models.StatusRejected)
	})
}

// ExtensionCount is the number of extension forms ever filed for a ticket.
func (s *Service) ExtensionCount(ctx context.Context, candidateNumber string) (int64, error) {
	conn := s.conn(ctx)
	ticket, err := findTicket(conn, candidateNumber)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := conn.Model(&models.ExtensionForm{}).Where("ticket_id = ?", ticket.TicketID).Count(&n).Error; err != nil {
		return 0, storeErr("count extensions", err)
	}
	return n, nil
}

// ListExtensions returns extension forms newest first, optionally by status.
func (s *Service) ListExtensions(ctx context.Context, status string) ([]ExtensionView, error) {
	q := s.conn(ctx).Table("extension_forms AS e").
		Select(`e.id, e.status, e.reason, e.special_case, e.created_at, e.decided_at,
		        e.ticket_id, t.candidate_number, t.session_id AS from_session_id, e.new_session_id`).
		Joins("LEFT JOIN exam_tickets t ON t.ticket_id = e.ticket_id")
	if status != "" {
		q = q.Where("e.status = ?", status)
	}
	var rows []extensionRow
	if err := q.Order("e.created_at DESC, e.id DESC").Scan(&rows).Error; err != nil {
		return nil, storeErr("list extensions", err)
	}
	out := make([]ExtensionView, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapExtension(r))
	}
	return out, nil
}
