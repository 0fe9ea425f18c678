package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/certhub/examdesk/internal/db"
	"github.com/certhub/examdesk/internal/models"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService opens an isolated SQLite store in a temp directory.
func newTestService(t *testing.T) *Service {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "svc.db"), "", quietLog())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(conn) }) //nolint:errcheck
	return New(conn, quietLog())
}

type catalog struct {
	Cert     models.Certificate
	Session  models.ExamSession
	Session2 models.ExamSession
	Session3 models.ExamSession
}

func seedCatalog(t *testing.T, s *Service) catalog {
	t.Helper()
	ctx := context.Background()
	cert, err := s.CreateCertificate(ctx, CertificateInput{Code: "toeic", Name: "TOEIC Listening & Reading", Fee: 1_500_000})
	require.NoError(t, err)

	at := time.Date(2026, 11, 7, 8, 0, 0, 0, time.UTC)
	mk := func(days int) models.ExamSession {
		sess, err := s.CreateSession(ctx, SessionInput{
			CertificateID: cert.ID,
			ScheduledAt:   at.AddDate(0, 0, days),
			Location:      "Cơ sở Quận 1",
			Seats:         40,
		})
		require.NoError(t, err)
		return sess
	}
	return catalog{Cert: cert, Session: mk(0), Session2: mk(7), Session3: mk(14)}
}

func seedCustomer(t *testing.T, s *Service, candidates int) models.Customer {
	t.Helper()
	ctx := context.Background()
	c, err := s.CreateCustomer(ctx, CustomerInput{
		Kind:    models.KindOrganization,
		OrgName: "Công ty TNHH Minh Phát",
		Phone:   "0912 345 678",
		Email:   "HR@MinhPhat.vn",
	})
	require.NoError(t, err)
	for i := 0; i < candidates; i++ {
		_, err := s.AddCandidate(ctx, c.ID, CandidateInput{FullName: fmt.Sprintf("Thí sinh %d", i+1)})
		require.NoError(t, err)
	}
	return c
}

// approvedTickets registers a customer with n candidates and approves it.
func approvedTickets(t *testing.T, s *Service, cat catalog, n int) (models.RegistrationForm, []models.ExamTicket) {
	t.Helper()
	ctx := context.Background()
	cust := seedCustomer(t, s, n)
	reg, err := s.CreateRegistration(ctx, RegistrationInput{CustomerID: cust.ID, SessionID: cat.Session.ID})
	require.NoError(t, err)
	tickets, err := s.ApproveRegistration(ctx, reg.ID)
	require.NoError(t, err)
	require.Len(t, tickets, n)
	return reg, tickets
}

func seedRoom(t *testing.T, s *Service, name string, capacity int) RoomView {
	t.Helper()
	v, err := s.SaveExamRoom(context.Background(), RoomInput{
		Name:     name,
		Building: "A",
		Capacity: fmt.Sprint(capacity),
	}, false)
	require.NoError(t, err)
	return v
}
