package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/certhub/examdesk/internal/models"
)

type CertificateInput struct {
	Code string `validate:"required,max=32"`
	Name string `validate:"required,max=200"`
	Fee  int64  `validate:"gte=0"`
}

func (s *Service) CreateCertificate(ctx context.Context, in CertificateInput) (c models.Certificate, err error) {
	defer func(start time.Time) { s.finish(ctx, "create_certificate", start, err) }(time.Now())

	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	if err = validateStruct(in); err != nil {
		return c, err
	}
	c = models.Certificate{Code: in.Code, Name: in.Name, Fee: in.Fee}
	if err = s.conn(ctx).Create(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c, fmt.Errorf("%w: certificate code %q already used", ErrValidation, in.Code)
		}
		return c, storeErr("create certificate", err)
	}
	return c, nil
}

func (s *Service) ListCertificates(ctx context.Context) ([]models.Certificate, error) {
	var out []models.Certificate
	if err := s.conn(ctx).Order("code asc").Find(&out).Error; err != nil {
		return nil, storeErr("list certificates", err)
	}
	return out, nil
}

type SessionInput struct {
	CertificateID uint      `validate:"required"`
	ScheduledAt   time.Time `validate:"required"`
	Location      string    `validate:"required,max=200"`
	Seats         int       `validate:"gt=0"`
}

// CreateSession schedules a sitting of a certificate exam.
func (s *Service) CreateSession(ctx context.Context, in SessionInput) (sess models.ExamSession, err error) {
	defer func(start time.Time) { s.finish(ctx, "create_session", start, err) }(time.Now())

	in.Location = strings.TrimSpace(in.Location)
	if err = validateStruct(in); err != nil {
		return sess, err
	}
	err = s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&models.Certificate{}, in.CertificateID).Error; err != nil {
			return requireErr("certificate", err)
		}
		sess = models.ExamSession{
			CertificateID: in.CertificateID,
			ScheduledAt:   in.ScheduledAt.UTC(),
			Location:      in.Location,
			Seats:         in.Seats,
			Status:        models.SessionNotHeld,
		}
		if err := tx.Create(&sess).Error; err != nil {
			return storeErr("create session", err)
		}
		return nil
	})
	return sess, err
}

// ListSessions returns sessions with their certificate, soonest first.
func (s *Service) ListSessions(ctx context.Context) ([]models.ExamSession, error) {
	var out []models.ExamSession
	if err := s.conn(ctx).Preload("Certificate").Order("scheduled_at asc").Find(&out).Error; err != nil {
		return nil, storeErr("list sessions", err)
	}
	return out, nil
}

// MarkSessionHeld flips a session to held.
func (s *Service) MarkSessionHeld(ctx context.Context, id uint) (err error) {
	defer func(start time.Time) { s.finish(ctx, "session_held", start, err) }(time.Now())

	return s.tx(ctx, func(tx *gorm.DB) error {
		var sess models.ExamSession
		if err := tx.First(&sess, id).Error; err != nil {
			return lookupErr("exam session", err)
		}
		if sess.Status == models.SessionHeld {
			return fmt.Errorf("session %d already held: %w", id, ErrInvalidTransition)
		}
		if err := tx.Model(&sess).Update("status", models.SessionHeld).Error; err != nil {
			return storeErr("mark session held", err)
		}
		return nil
	})
}

// UpcomingSessions returns not-yet-held sessions scheduled in [from, to).
// Times are stored in UTC.
func (s *Service) UpcomingSessions(ctx context.Context, from, to time.Time) ([]models.ExamSession, error) {
	from, to = from.UTC(), to.UTC()
	var out []models.ExamSession
	err := s.conn(ctx).Preload("Certificate").
		Where("status = ? AND scheduled_at >= ? AND scheduled_at < ?", models.SessionNotHeld, from, to).
		Order("scheduled_at asc").
		Find(&out).Error
	if err != nil {
		return nil, storeErr("upcoming sessions", err)
	}
	return out, nil
}
