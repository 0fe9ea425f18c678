package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certhub/examdesk/internal/models"
)

func TestApproveRegistration_IssuesTicketsAndInvoice(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cat := seedCatalog(t, s)

	reg, tickets := approvedTickets(t, s, cat, 3)

	seen := map[string]bool{}
	for _, tk := range tickets {
		assert.Regexp(t, `^SBD-[0-9A-F]{8}$`, tk.CandidateNumber)
		assert.False(t, seen[tk.CandidateNumber], "duplicate number %s", tk.CandidateNumber)
		seen[tk.CandidateNumber] = true
		assert.Nil(t, tk.RoomID)
		assert.Equal(t, models.TicketNotTaken, tk.Status)
		assert.Equal(t, cat.Session.ID, tk.SessionID)
		assert.Equal(t, reg.ID, tk.RegistrationID)
	}

	var stored models.RegistrationForm
	require.NoError(t, s.DB().First(&stored, reg.ID).Error)
	assert.Equal(t, models.StatusApproved, stored.Status)
	assert.NotNil(t, stored.DecidedAt)

	inv, err := s.InvoiceForRegistration(ctx, reg.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3*1_500_000, inv.Amount)
	assert.Equal(t, models.InvoiceUnpaid, inv.Status)

	regs, err := s.ListRegistrations(ctx, models.StatusApproved)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.EqualValues(t, 3, regs[0].Tickets)
	assert.Equal(t, "Công ty TNHH Minh Phát", regs[0].CustomerName)
	assert.Equal(t, "TOEIC", regs[0].Certificate)
}

func TestApproveRegistration_NoCandidatesRollsBack(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cat := seedCatalog(t, s)
	cust := seedCustomer(t, s, 0)

	reg, err := s.CreateRegistration(ctx, RegistrationInput{CustomerID: cust.ID, SessionID: cat.Session.ID})
	require.NoError(t, err)

	_, err = s.ApproveRegistration(ctx, reg.ID)
	assert.ErrorIs(t, err, ErrNoCandidates)

	var stored models.RegistrationForm
	require.NoError(t, s.DB().First(&stored, reg.ID).Error)
	assert.Equal(t, models.StatusPending, stored.Status, "approval must roll back")

	var n int64
	s.DB().Model(&models.ExamTicket{}).Count(&n)
	assert.Zero(t, n)
	s.DB().Model(&models.Invoice{}).Count(&n)
	assert.Zero(t, n)
}

func TestApproveRegistration_Transitions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cat := seedCatalog(t, s)
	reg, _ := approvedTickets(t, s, cat, 1)

	_, err := s.ApproveRegistration(ctx, reg.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.RejectRegistration(ctx, reg.ID), ErrInvalidTransition)

	_, err = s.ApproveRegistration(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int64
	s.DB().Model(&models.ExamTicket{}).Where("registration_id = ?", reg.ID).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestRejectRegistration(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cat := seedCatalog(t, s)
	cust := seedCustomer(t, s, 2)
	reg, err := s.CreateRegistration(ctx, RegistrationInput{CustomerID: cust.ID, SessionID: cat.Session.ID})
	require.NoError(t, err)

	require.NoError(t, s.RejectRegistration(ctx, reg.ID))
	_, err = s.ApproveRegistration(ctx, reg.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var n int64
	s.DB().Model(&models.ExamTicket{}).Count(&n)
	assert.Zero(t, n)
}

func TestCreateRegistration_MissingData(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cat := seedCatalog(t, s)
	cust := seedCustomer(t, s, 1)

	_, err := s.CreateRegistration(ctx, RegistrationInput{CustomerID: 777, SessionID: cat.Session.ID})
	assert.ErrorIs(t, err, ErrMissingData)
	_, err = s.CreateRegistration(ctx, RegistrationInput{CustomerID: cust.ID, SessionID: 777})
	assert.ErrorIs(t, err, ErrMissingData)
	_, err = s.CreateRegistration(ctx, RegistrationInput{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateExamTickets_RequiresApproval(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cat := seedCatalog(t, s)
	cust := seedCustomer(t, s, 2)
	reg, err := s.CreateRegistration(ctx, RegistrationInput{CustomerID: cust.ID, SessionID: cat.Session.ID})
	require.NoError(t, err)

	_, err = s.CreateExamTickets(ctx, reg.ID)
	assert.ErrorIs(t, err, ErrRegistrationNotApproved)

	var n int64
	s.DB().Model(&models.ExamTicket{}).Count(&n)
	assert.Zero(t, n)
}

func TestCreateExamTickets_AlreadyIssued(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cat := seedCatalog(t, s)
	reg, _ := approvedTickets(t, s, cat, 2)

	_, err := s.CreateExamTickets(ctx, reg.ID)
	assert.ErrorIs(t, err, ErrTicketsAlreadyIssued)

	var n int64
	s.DB().Model(&models.ExamTicket{}).Count(&n)
	assert.EqualValues(t, 2, n)
}

func TestMarkInvoicePaid(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cat := seedCatalog(t, s)
	reg, _ := approvedTickets(t, s, cat, 1)
	inv, err := s.InvoiceForRegistration(ctx, reg.ID)
	require.NoError(t, err)

	require.NoError(t, s.MarkInvoicePaid(ctx, inv.ID))
	assert.ErrorIs(t, s.MarkInvoicePaid(ctx, inv.ID), ErrInvalidTransition)
	assert.ErrorIs(t, s.MarkInvoicePaid(ctx, 4040), ErrNotFound)

	paid, err := s.ListInvoices(ctx, models.InvoicePaid)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.NotNil(t, paid[0].PaidAt)
}
