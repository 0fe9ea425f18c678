package handlers

import (
	"net/http"
	"strings"

	"github.com/certhub/examdesk/internal/services"
)

type registrationRequest struct {
	CustomerID uint `json:"customer_id"`
	SessionID  uint `json:"session_id"`
}

// GET /admin/registrations?status=
func (e *Env) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	rows, err := e.Svc.ListRegistrations(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		e.fail(w, r, "list_registrations", err)
		return
	}
	ok(w, "", rows)
}

// POST /admin/registrations
func (e *Env) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "create_registration", err)
		return
	}
	reg, err := e.Svc.CreateRegistration(r.Context(), services.RegistrationInput{
		CustomerID: req.CustomerID,
		SessionID:  req.SessionID,
	})
	if err != nil {
		e.fail(w, r, "create_registration", err)
		return
	}
	e.notice(r, "create_registration", "Phiếu đăng ký #%d đã được tạo.", reg.ID)
	created(w, "Đã tạo phiếu đăng ký.", reg)
}

// POST /admin/registrations/{id}/approve
func (e *Env) ApproveRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		e.fail(w, r, "approve_registration", err)
		return
	}
	tickets, err := e.Svc.ApproveRegistration(r.Context(), id)
	if err != nil {
		e.fail(w, r, "approve_registration", err)
		return
	}
	e.notice(r, "approve_registration", "Phiếu đăng ký #%d đã duyệt, phát hành %d phiếu dự thi.", id, len(tickets))
	ok(w, "Đã duyệt phiếu đăng ký.", tickets)
}

// POST /admin/registrations/{id}/reject
func (e *Env) RejectRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = e.Svc.RejectRegistration(r.Context(), id)
	}
	if err != nil {
		e.fail(w, r, "reject_registration", err)
		return
	}
	e.notice(r, "reject_registration", "Phiếu đăng ký #%d bị từ chối.", id)
	ok(w, "Đã từ chối phiếu đăng ký.", nil)
}

// POST /admin/registrations/{id}/tickets issues tickets for an approved
// registration that has none yet.
func (e *Env) IssueTickets(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		e.fail(w, r, "create_tickets", err)
		return
	}
	tickets, err := e.Svc.CreateExamTickets(r.Context(), id)
	if err != nil {
		e.fail(w, r, "create_tickets", err)
		return
	}
	e.notice(r, "create_tickets", "Phiếu đăng ký #%d: phát hành %d phiếu dự thi.", id, len(tickets))
	created(w, "Đã phát hành phiếu dự thi.", tickets)
}

// GET /admin/registrations/{id}/invoice
func (e *Env) RegistrationInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		e.fail(w, r, "show_invoice", err)
		return
	}
	inv, err := e.Svc.InvoiceForRegistration(r.Context(), id)
	if err != nil {
		e.fail(w, r, "show_invoice", err)
		return
	}
	ok(w, "", inv)
}
