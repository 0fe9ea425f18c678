package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/certhub/examdesk/internal/services"
)

type certificateRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Fee  int64  `json:"fee"`
}

// GET /admin/certificates
func (e *Env) ListCertificates(w http.ResponseWriter, r *http.Request) {
	list, err := e.Svc.ListCertificates(r.Context())
	if err != nil {
		e.fail(w, r, "list_certificates", err)
		return
	}
	ok(w, "", list)
}

// POST /admin/certificates
func (e *Env) CreateCertificate(w http.ResponseWriter, r *http.Request) {
	var req certificateRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "create_certificate", err)
		return
	}
	c, err := e.Svc.CreateCertificate(r.Context(), services.CertificateInput{Code: req.Code, Name: req.Name, Fee: req.Fee})
	if err != nil {
		e.fail(w, r, "create_certificate", err)
		return
	}
	e.notice(r, "create_certificate", "Chứng chỉ %s đã được tạo.", c.Code)
	created(w, "Đã tạo chứng chỉ.", c)
}

type sessionRequest struct {
	CertificateID uint   `json:"certificate_id"`
	ScheduledAt   string `json:"scheduled_at"` // RFC 3339, or local "2006-01-02T15:04"
	Location      string `json:"location"`
	Seats         any    `json:"seats"`
}

// GET /admin/sessions
func (e *Env) ListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := e.Svc.ListSessions(r.Context())
	if err != nil {
		e.fail(w, r, "list_sessions", err)
		return
	}
	ok(w, "", list)
}

// POST /admin/sessions
func (e *Env) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "create_session", err)
		return
	}
	at, good := parseLocalTime(strings.TrimSpace(req.ScheduledAt), e.Loc)
	if !good {
		e.fail(w, r, "create_session", fmt.Errorf("%w: scheduled_at %q", services.ErrValidation, req.ScheduledAt))
		return
	}
	seats, err := strconv.Atoi(strings.TrimSpace(rawString(req.Seats)))
	if err != nil {
		e.fail(w, r, "create_session", fmt.Errorf("%w: seats must be an integer", services.ErrValidation))
		return
	}
	sess, err := e.Svc.CreateSession(r.Context(), services.SessionInput{
		CertificateID: req.CertificateID,
		ScheduledAt:   at,
		Location:      req.Location,
		Seats:         seats,
	})
	if err != nil {
		e.fail(w, r, "create_session", err)
		return
	}
	e.notice(r, "create_session", "Ca thi #%d lúc %s đã được tạo.", sess.ID, fmtDateTime(sess.ScheduledAt, e.Loc))
	created(w, "Đã tạo ca thi.", sess)
}

// POST /admin/sessions/{id}/held
func (e *Env) MarkSessionHeld(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = e.Svc.MarkSessionHeld(r.Context(), id)
	}
	if err != nil {
		e.fail(w, r, "session_held", err)
		return
	}
	e.notice(r, "session_held", "Ca thi #%d đã tổ chức.", id)
	ok(w, "Ca thi đã được đánh dấu là đã tổ chức.", nil)
}

// GET /admin/invoices?status=
func (e *Env) ListInvoices(w http.ResponseWriter, r *http.Request) {
	list, err := e.Svc.ListInvoices(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		e.fail(w, r, "list_invoices", err)
		return
	}
	ok(w, "", list)
}

// POST /admin/invoices/{id}/paid
func (e *Env) MarkInvoicePaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = e.Svc.MarkInvoicePaid(r.Context(), id)
	}
	if err != nil {
		e.fail(w, r, "invoice_paid", err)
		return
	}
	e.notice(r, "invoice_paid", "Hoá đơn #%d đã thanh toán.", id)
	ok(w, "Đã ghi nhận thanh toán.", nil)
}
