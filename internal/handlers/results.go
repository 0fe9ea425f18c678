package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/certhub/examdesk/internal/services"
)

type resultRequest struct {
	CandidateNumber   string `json:"candidate_number"`
	Score             any    `json:"score"` // number or text
	Grader            string `json:"grader"`
	Proctor           string `json:"proctor"`
	CertificateStatus string `json:"certificate_status"`
}

// POST /admin/results
func (e *Env) SaveResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "save_result", err)
		return
	}
	res, err := e.Svc.SaveExamResults(r.Context(), services.ResultInput{
		CandidateNumber:   req.CandidateNumber,
		Score:             rawString(req.Score),
		Grader:            req.Grader,
		Proctor:           req.Proctor,
		CertificateStatus: req.CertificateStatus,
	})
	if err != nil {
		e.fail(w, r, "save_result", err)
		return
	}
	e.notice(r, "save_result", "Kết quả thi của %s: %s điểm.", res.CandidateNumber, strconv.FormatFloat(res.Score, 'f', -1, 64))
	created(w, "Đã ghi nhận kết quả thi.", res)
}

// GET /admin/results/{number}
func (e *Env) ShowResult(w http.ResponseWriter, r *http.Request) {
	res, err := e.Svc.GetResult(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		e.fail(w, r, "show_result", err)
		return
	}
	ok(w, "", res)
}

type certificateStatusRequest struct {
	Status string `json:"status"`
}

// POST /admin/results/{number}/certificate
func (e *Env) SetCertificateStatus(w http.ResponseWriter, r *http.Request) {
	var req certificateStatusRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "certificate_status", err)
		return
	}
	if err := e.Svc.UpdateCertificateStatus(r.Context(), chi.URLParam(r, "number"), req.Status); err != nil {
		e.fail(w, r, "certificate_status", err)
		return
	}
	e.notice(r, "certificate_status", "Chứng chỉ của %s: %s.", chi.URLParam(r, "number"), req.Status)
	ok(w, "Đã cập nhật trạng thái chứng chỉ.", nil)
}

// GET /admin/ledger
func (e *Env) Ledger(w http.ResponseWriter, r *http.Request) {
	rows, err := e.Svc.CertificateLedgerReport(r.Context())
	if err != nil {
		e.fail(w, r, "ledger", err)
		return
	}
	ok(w, "", rows)
}
