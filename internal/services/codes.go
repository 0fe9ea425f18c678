package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/certhub/examdesk/internal/models"
)

const candidatePrefix = "SBD-"

// NewTicketID returns a fresh ticket identifier.
func NewTicketID() string { return uuid.NewString() }

// NewCandidateNumber returns an SBD-XXXXXXXX code (uppercase hex).
func NewCandidateNumber() string {
	id := uuid.New()
	return candidatePrefix + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// uniqueCandidateNumber draws numbers until one is free in the store and
// not already handed out in the current batch.
func uniqueCandidateNumber(tx *gorm.DB, taken map[string]bool) (string, error) {
	for i := 0; i < 20; i++ {
		code := NewCandidateNumber()
		if taken[code] {
			continue
		}
		var exists int64
		if err := tx.Model(&models.ExamTicket{}).Where("candidate_number = ?", code).Count(&exists).Error; err != nil {
			return "", storeErr("check candidate number", err)
		}
		if exists == 0 {
			taken[code] = true
			return code, nil
		}
	}
	return "", errors.New("could not allocate a candidate number")
}
