package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/certhub/examdesk/internal/events"
	"github.com/certhub/examdesk/internal/services"
)

type envelope struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, env envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(env)
}

func ok(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Code: http.StatusOK, Status: "success", Message: message, Data: data})
}

func created(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, envelope{Code: http.StatusCreated, Status: "success", Message: message, Data: data})
}

type errEntry struct {
	err    error
	status int
	text   string
}

// errTable is checked in order; more specific errors come first.
var errTable = []errEntry{
	{services.ErrInvalidScore, http.StatusBadRequest, "Điểm thi không hợp lệ (0 đến 100)."},
	{services.ErrValidation, http.StatusBadRequest, "Dữ liệu không hợp lệ."},
	{services.ErrNotFound, http.StatusNotFound, "Không tìm thấy dữ liệu."},
	{services.ErrCapacityExceeded, http.StatusConflict, "Phòng thi đã đủ chỗ."},
	{services.ErrRoomNotEmpty, http.StatusConflict, "Phòng thi vẫn còn thí sinh, không thể xoá."},
	{services.ErrExtensionLimitExceeded, http.StatusConflict, "Mỗi phiếu dự thi chỉ được gia hạn tối đa 2 lần."},
	{services.ErrRegistrationNotApproved, http.StatusConflict, "Phiếu đăng ký chưa được duyệt."},
	{services.ErrDuplicateResult, http.StatusConflict, "Thí sinh đã có kết quả thi."},
	{services.ErrInvalidTransition, http.StatusConflict, "Trạng thái hiện tại không cho phép thao tác này."},
	{services.ErrTicketsAlreadyIssued, http.StatusConflict, "Phiếu dự thi đã được phát hành."},
	{services.ErrMissingData, http.StatusUnprocessableEntity, "Thiếu dữ liệu liên quan."},
	{services.ErrNoCandidates, http.StatusUnprocessableEntity, "Khách hàng chưa có thí sinh nào."},
}

const internalText = "Lỗi hệ thống, vui lòng thử lại."

// describe maps an error to an HTTP status and a localized message.
func describe(err error) (int, string) {
	for _, e := range errTable {
		if errors.Is(err, e.err) {
			return e.status, e.text
		}
	}
	return http.StatusInternalServerError, internalText
}

// fail writes the error envelope, logs it and emits an error notice.
func (e *Env) fail(w http.ResponseWriter, r *http.Request, workflow string, err error) {
	status, text := describe(err)
	env := envelope{Code: status, Status: "error", Message: text}
	if status < http.StatusInternalServerError {
		env.Detail = err.Error()
		e.Log.InfoContext(r.Context(), "request rejected", "workflow", workflow, "status", status, "err", err)
	} else {
		e.Log.ErrorContext(r.Context(), "request failed", "workflow", workflow, "err", err)
	}
	e.Notify.Notify(r.Context(), events.Notice{Kind: events.KindError, Workflow: workflow, Text: text})
	writeJSON(w, status, env)
}

// notice emits an info notice for a completed workflow.
func (e *Env) notice(r *http.Request, workflow, format string, args ...any) {
	e.Notify.Notify(r.Context(), events.Notice{Kind: events.KindInfo, Workflow: workflow, Text: fmt.Sprintf(format, args...)})
}

const maxBody = 1 << 20

// decode reads a JSON body into dst. Numbers stay json.Number so raw
// capacity and score text reach the services untouched.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", services.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON: %v", services.ErrValidation, err)
	}
	return nil
}

// rawString renders a loosely typed JSON value as the text a form would send.
func rawString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad %s %q", services.ErrValidation, name, raw)
	}
	return uint(id), nil
}

func queryUint(r *http.Request, name string) uint {
	id, _ := strconv.ParseUint(strings.TrimSpace(r.URL.Query().Get(name)), 10, 64)
	return uint(id)
}
