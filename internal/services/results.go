package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/certhub/examdesk/internal/models"
)

type ResultInput struct {
	CandidateNumber   string `validate:"required"`
	Score             string
	Grader            string `validate:"required,max=200"`
	Proctor           string `validate:"required,max=200"`
	CertificateStatus string `validate:"omitempty,oneof=not_received received"`
}

// ParseScore accepts finite numbers in [0, 100].
func ParseScore(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	return v, nil
}

// SaveExamResults records the one and only result of a candidate, writes
// the certificate-ledger row and marks the ticket as taken.
func (s *Service) SaveExamResults(ctx context.Context, in ResultInput) (result models.ExamResult, err error) {
	defer func(start time.Time) { s.finish(ctx, "save_result", start, err) }(time.Now())

	in.CandidateNumber = strings.TrimSpace(in.CandidateNumber)
	in.Grader = strings.TrimSpace(in.Grader)
	in.Proctor = strings.TrimSpace(in.Proctor)
	in.CertificateStatus = strings.ToLower(strings.TrimSpace(in.CertificateStatus))
	if in.CandidateNumber == "" {
		return result, fmt.Errorf("%w: candidate number required", ErrValidation)
	}

	err = s.tx(ctx, func(tx *gorm.DB) error {
		ticket, err := findTicket(tx, in.CandidateNumber)
		if err != nil {
			return err
		}
		// An existing result wins over any problem with the new input.
		var existing int64
		if err := tx.Model(&models.ExamResult{}).Where("candidate_number = ?", ticket.CandidateNumber).Count(&existing).Error; err != nil {
			return storeErr("check result", err)
		}
		if existing > 0 {
			return fmt.Errorf("candidate %s: %w", ticket.CandidateNumber, ErrDuplicateResult)
		}

		score, err := ParseScore(in.Score)
		if err != nil {
			return err
		}
		if err := validateStruct(in); err != nil {
			return err
		}
		if in.CertificateStatus == "" {
			in.CertificateStatus = models.CertNotReceived
		}
		var session models.ExamSession
		if err := tx.First(&session, ticket.SessionID).Error; err != nil {
			return requireErr("exam session", err)
		}

		result = models.ExamResult{
			CandidateNumber:   ticket.CandidateNumber,
			Score:             score,
			Grader:            in.Grader,
			Proctor:           in.Proctor,
			CertificateStatus: in.CertificateStatus,
		}
		if err := tx.Create(&result).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("candidate %s: %w", ticket.CandidateNumber, ErrDuplicateResult)
			}
			return storeErr("create result", err)
		}

		ledger := models.CertificateLedger{
			CandidateNumber: ticket.CandidateNumber,
			CertificateID:   session.CertificateID,
			Score:           score,
			Passed:          score >= models.PassScore,
		}
		if err := tx.Create(&ledger).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("ledger for %s: %w", ticket.CandidateNumber, ErrDuplicateResult)
			}
			return storeErr("create ledger", err)
		}

		if err := tx.Model(&models.ExamTicket{}).
			Where("ticket_id = ?", ticket.TicketID).
			Update("status", models.TicketTaken).Error; err != nil {
			return storeErr("mark ticket taken", err)
		}
		return nil
	})
	return result, err
}

// UpdateCertificateStatus records whether the certificate was handed over.
// The score itself is immutable.
func (s *Service) UpdateCertificateStatus(ctx context.Context, candidateNumber, status string) (err error) {
	defer func(start time.Time) { s.finish(ctx, "certificate_status", start, err) }(time.Now())

	status = strings.ToLower(strings.TrimSpace(status))
	if status != models.CertReceived && status != models.CertNotReceived {
		return fmt.Errorf("%w: certificate status must be %q or %q", ErrValidation, models.CertReceived, models.CertNotReceived)
	}
	res := s.conn(ctx).Model(&models.ExamResult{}).
		Where("candidate_number = ?", strings.TrimSpace(candidateNumber)).
		Update("certificate_status", status)
	if res.Error != nil {
		return storeErr("update certificate status", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("result %s: %w", candidateNumber, ErrNotFound)
	}
	return nil
}

// GetResult returns the recorded result of a candidate.
func (s *Service) GetResult(ctx context.Context, candidateNumber string) (models.ExamResult, error) {
	var r models.ExamResult
	if err := s.conn(ctx).Where("candidate_number = ?", strings.TrimSpace(candidateNumber)).First(&r).Error; err != nil {
		return r, lookupErr("result", err)
	}
	return r, nil
}
