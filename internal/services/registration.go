package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/certhub/examdesk/internal/models"
)

type RegistrationInput struct {
	CustomerID uint `validate:"required"`
	SessionID  uint `validate:"required"`
}

// CreateRegistration files a pending registration of a customer for a session.
func (s *Service) CreateRegistration(ctx context.Context, in RegistrationInput) (reg models.RegistrationForm, err error) {
	defer func(start time.Time) { s.finish(ctx, "create_registration", start, err) }(time.Now())

	if err = validateStruct(in); err != nil {
		return reg, err
	}
	err = s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&models.Customer{}, in.CustomerID).Error; err != nil {
			return requireErr("customer", err)
		}
		if err := tx.First(&models.ExamSession{}, in.SessionID).Error; err != nil {
			return requireErr("exam session", err)
		}
		reg = models.RegistrationForm{
			CustomerID: in.CustomerID,
			SessionID:  in.SessionID,
			Status:     models.StatusPending,
		}
		if err := tx.Create(&reg).Error; err != nil {
			return storeErr("create registration", err)
		}
		return nil
	})
	return reg, err
}

// ApproveRegistration moves a pending registration to approved, issues one
// ticket per candidate of the customer and the invoice. Any failure rolls
// the whole approval back, leaving the registration pending.
func (s *Service) ApproveRegistration(ctx context.Context, id uint) (tickets []models.ExamTicket, err error) {
	defer func(start time.Time) { s.finish(ctx, "approve_registration", start, err) }(time.Now())

	err = s.tx(ctx, func(tx *gorm.DB) error {
		if err := s.decide(tx, &models.RegistrationForm{}, "registration", id, models.StatusApproved); err != nil {
			return err
		}
		b, issued, err := createExamTicketsTx(tx, id)
		if err != nil {
			return err
		}
		if _, err := issueInvoiceTx(tx, b, len(issued)); err != nil {
			return err
		}
		tickets = issued
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "registration approved", "registration_id", id, "tickets", len(tickets))
	return tickets, nil
}

// RejectRegistration closes a pending registration without side effects.
func (s *Service) RejectRegistration(ctx context.Context, id uint) (err error) {
	defer func(start time.Time) { s.finish(ctx, "reject_registration", start, err) }(time.Now())

	return s.tx(ctx, func(tx *gorm.DB) error {
		return s.decide(tx, &models.RegistrationForm{}, "registration", id, models.StatusRejected)
	})
}

// CreateExamTickets issues the tickets of an approved registration on its
// own. It refuses when the registration already has tickets.
func (s *Service) CreateExamTickets(ctx context.Context, registrationID uint) (tickets []models.ExamTicket, err error) {
	defer func(start time.Time) { s.finish(ctx, "create_tickets", start, err) }(time.Now())

	err = s.tx(ctx, func(tx *gorm.DB) error {
		_, issued, err := createExamTicketsTx(tx, registrationID)
		tickets = issued
		return err
	})
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// registrationBundle is a registration with the rows ticket issuance needs.
type registrationBundle struct {
	Reg         models.RegistrationForm
	Customer    models.Customer
	Session     models.ExamSession
	Certificate models.Certificate
}

func loadRegistrationBundle(tx *gorm.DB, id uint) (registrationBundle, error) {
	var b registrationBundle
	if err := tx.First(&b.Reg, id).Error; err != nil {
		return b, lookupErr("registration", err)
	}
	if err := tx.First(&b.Customer, b.Reg.CustomerID).Error; err != nil {
		return b, requireErr("customer", err)
	}
	if err := tx.First(&b.Session, b.Reg.SessionID).Error; err != nil {
		return b, requireErr("exam session", err)
	}
	if err := tx.First(&b.Certificate, b.Session.CertificateID).Error; err != nil {
		return b, requireErr("certificate", err)
	}
	return b, nil
}

func createExamTicketsTx(tx *gorm.DB, registrationID uint) (registrationBundle, []models.ExamTicket, error) {
	b, err := loadRegistrationBundle(tx, registrationID)
	if err != nil {
		return b, nil, err
	}
	if b.Reg.Status != models.StatusApproved {
		return b, nil, fmt.Errorf("registration %d is %s: %w", registrationID, b.Reg.Status, ErrRegistrationNotApproved)
	}

	var existing int64
	if err := tx.Model(&models.ExamTicket{}).Where("registration_id = ?", registrationID).Count(&existing).Error; err != nil {
		return b, nil, storeErr("count tickets", err)
	}
	if existing > 0 {
		return b, nil, fmt.Errorf("registration %d: %w", registrationID, ErrTicketsAlreadyIssued)
	}

	var candidates []models.Candidate
	if err := tx.Where("customer_id = ?", b.Customer.ID).Order("id asc").Find(&candidates).Error; err != nil {
		return b, nil, storeErr("load candidates", err)
	}
	if len(candidates) == 0 {
		return b, nil, fmt.Errorf("customer %d: %w", b.Customer.ID, ErrNoCandidates)
	}

	taken := make(map[string]bool, len(candidates))
	tickets := make([]models.ExamTicket, 0, len(candidates))
	for _, c := range candidates {
		number, err := uniqueCandidateNumber(tx, taken)
		if err != nil {
			return b, nil, err
		}
		tickets = append(tickets, models.ExamTicket{
			TicketID:        NewTicketID(),
			CandidateNumber: number,
			CandidateID:     c.ID,
			CustomerID:      b.Customer.ID,
			RegistrationID:  b.Reg.ID,
			SessionID:       b.Session.ID,
			Status:          models.TicketNotTaken,
		})
	}
	if err := tx.Create(&tickets).Error; err != nil {
		return b, nil, storeErr("create tickets", err)
	}
	return b, tickets, nil
}

// decide moves a pending form (registration or extension) to a terminal
// status. The status guard is part of the UPDATE so a form is decided once.
func (s *Service) decide(tx *gorm.DB, model any, what string, id uint, status string) error {
	res := tx.Model(model).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]any{"status": status, "decided_at": s.now()})
	if res.Error != nil {
		return storeErr("decide "+what, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var current struct{ Status string }
	if err := tx.Model(model).Select("status").Where("id = ?", id).Take(&current).Error; err != nil {
		return lookupErr(what, err)
	}
	return fmt.Errorf("%s %d is %s: %w", what, id, current.Status, ErrInvalidTransition)
}

// ListRegistrations returns registrations newest first, optionally by status.
func (s *Service) ListRegistrations(ctx context.Context, status string) ([]RegistrationView, error) {
	q := s.conn(ctx).Table("registration_forms AS r").
		Select(`r.id, r.status, r.created_at, r.decided_at,
		        r.customer_id, c.kind AS customer_kind, c.ho_ten, c.org_name,
		        r.session_id, s.scheduled_at, cert.code AS certificate_code,
		        (SELECT COUNT(*) FROM exam_tickets t WHERE t.registration_id = r.id) AS tickets`).
		Joins("LEFT JOIN customers c ON c.id = r.customer_id").
		Joins("LEFT JOIN exam_sessions s ON s.id = r.session_id").
		Joins("LEFT JOIN certificates cert ON cert.id = s.certificate_id")
	if status != "" {
		q = q.Where("r.status = ?", status)
	}
	var rows []registrationRow
	if err := q.Order("r.created_at DESC, r.id DESC").Scan(&rows).Error; err != nil {
		return nil, storeErr("list registrations", err)
	}
	out := make([]RegistrationView, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapRegistration(r))
	}
	return out, nil
}

// lockTicket loads a ticket by id under a row lock where the store has one.
func lockTicket(tx *gorm.DB, ticketID string) (models.ExamTicket, error) {
	var t models.ExamTicket
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("ticket_id = ?", ticketID).First(&t).Error
	return t, err
}
