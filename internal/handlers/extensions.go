package handlers

import (
	"net/http"
	"strings"

	"github.com/certhub/examdesk/internal/services"
)

type extensionRequest struct {
	CandidateNumber string `json:"candidate_number"`
	NewSessionID    uint   `json:"new_session_id"`
	Reason          string `json:"reason"`
	SpecialCase     bool   `json:"special_case"`
}

// GET /admin/extensions?status=
func (e *Env) ListExtensions(w http.ResponseWriter, r *http.Request) {
	rows, err := e.Svc.ListExtensions(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		e.fail(w, r, "list_extensions", err)
		return
	}
	ok(w, "", rows)
}

// POST /admin/extensions
func (e *Env) CreateExtension(w http.ResponseWriter, r *http.Request) {
	var req extensionRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "create_extension", err)
		return
	}
	form, err := e.Svc.CreateExtension(r.Context(), services.ExtensionInput{
		CandidateNumber: req.CandidateNumber,
		NewSessionID:    req.NewSessionID,
		Reason:          req.Reason,
		SpecialCase:     req.SpecialCase,
	})
	if err != nil {
		e.fail(w, r, "create_extension", err)
		return
	}
	e.notice(r, "create_extension", "Phiếu gia hạn #%d cho thí sinh %s đã được tạo.", form.ID, strings.TrimSpace(req.CandidateNumber))
	created(w, "Đã tạo phiếu gia hạn.", form)
}

// POST /admin/extensions/{id}/approve
func (e *Env) ApproveExtension(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = e.Svc.ApproveExtension(r.Context(), id)
	}
	if err != nil {
		e.fail(w, r, "approve_extension", err)
		return
	}
	e.notice(r, "approve_extension", "Phiếu gia hạn #%d đã duyệt.", id)
	ok(w, "Đã duyệt phiếu gia hạn.", nil)
}

// POST /admin/extensions/{id}/reject
func (e *Env) RejectExtension(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = e.Svc.RejectExtension(r.Context(), id)
	}
	if err != nil {
		e.fail(w, r, "reject_extension", err)
		return
	}
	e.notice(r, "reject_extension", "Phiếu gia hạn #%d bị từ chối.", id)
	ok(w, "Đã từ chối phiếu gia hạn.", nil)
}
