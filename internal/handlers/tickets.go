package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/certhub/examdesk/internal/models"
	"github.com/certhub/examdesk/internal/services"
)

func rosterFilter(r *http.Request) services.RosterFilter {
	q := r.URL.Query()
	unassigned, _ := strconv.ParseBool(q.Get("unassigned"))
	return services.RosterFilter{
		SessionID:  queryUint(r, "session_id"),
		RoomID:     queryUint(r, "room_id"),
		Status:     strings.TrimSpace(q.Get("status")),
		Unassigned: unassigned,
		Q:          strings.TrimSpace(q.Get("q")),
	}
}

// GET /admin/tickets?session_id=&room_id=&status=&unassigned=&q=
func (e *Env) ListTickets(w http.ResponseWriter, r *http.Request) {
	rows, err := e.Svc.TicketRoster(r.Context(), rosterFilter(r))
	if err != nil {
		e.fail(w, r, "roster", err)
		return
	}
	ok(w, "", rows)
}

// GET /admin/tickets.csv (same filters)
func (e *Env) TicketsCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := e.Svc.TicketRoster(r.Context(), rosterFilter(r))
	if err != nil {
		e.fail(w, r, "roster", err)
		return
	}

	filename := fmt.Sprintf("danh-sach-thi-sinh-%s.csv", fmtISODate(time.Now(), e.Loc))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{
		"SBD", "Thí sinh", "Khách hàng", "Chứng chỉ", "Ca thi", "Địa điểm",
		"Phòng", "Trạng thái", "Số lần gia hạn",
	})
	for _, t := range rows {
		when := ""
		if t.ScheduledAt != nil {
			when = fmtDateTime(*t.ScheduledAt, e.Loc)
		}
		_ = cw.Write([]string{
			t.CandidateNumber,
			t.CandidateName,
			t.CustomerName,
			t.Certificate,
			when,
			t.Location,
			t.RoomName,
			t.Status,
			strconv.Itoa(t.ExtensionCount),
		})
	}
}

type ticketDetail struct {
	models.ExamTicket
	ExtensionForms int64 `json:"extension_forms"`
	ExtensionsLeft int64 `json:"extensions_left"`
}

// GET /admin/tickets/{number}
func (e *Env) ShowTicket(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	tk, err := e.Svc.GetTicket(r.Context(), number)
	if err != nil {
		e.fail(w, r, "show_ticket", err)
		return
	}
	n, err := e.Svc.ExtensionCount(r.Context(), number)
	if err != nil {
		e.fail(w, r, "show_ticket", err)
		return
	}
	left := int64(models.MaxExtensions) - n
	if left < 0 {
		left = 0
	}
	ok(w, "", ticketDetail{ExamTicket: tk, ExtensionForms: n, ExtensionsLeft: left})
}

type assignRequest struct {
	RoomID any `json:"room_id"`
}

// POST /admin/tickets/{number}/assign
func (e *Env) AssignTicket(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	var req assignRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "assign_room", err)
		return
	}
	roomID, err := strconv.ParseUint(strings.TrimSpace(rawString(req.RoomID)), 10, 64)
	if err != nil || roomID == 0 {
		e.fail(w, r, "assign_room", fmt.Errorf("%w: room_id required", services.ErrValidation))
		return
	}
	if err := e.Svc.AssignCandidateToRoom(r.Context(), number, uint(roomID)); err != nil {
		e.fail(w, r, "assign_room", err)
		return
	}
	room, err := e.Svc.GetRoom(r.Context(), uint(roomID))
	if err != nil {
		e.fail(w, r, "assign_room", err)
		return
	}
	e.notice(r, "assign_room", "Thí sinh %s được xếp vào phòng %s (%d/%d).", number, room.Name, room.AssignedCount, room.Capacity)
	ok(w, "Đã xếp phòng cho thí sinh.", room)
}

// POST /admin/tickets/{number}/unassign
func (e *Env) UnassignTicket(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if err := e.Svc.RemoveCandidateFromRoom(r.Context(), number); err != nil {
		e.fail(w, r, "unassign_room", err)
		return
	}
	e.notice(r, "unassign_room", "Thí sinh %s đã được gỡ khỏi phòng thi.", number)
	ok(w, "Đã gỡ thí sinh khỏi phòng.", nil)
}
