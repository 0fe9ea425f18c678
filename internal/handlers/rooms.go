package handlers

import (
	"net/http"

	"github.com/certhub/examdesk/internal/services"
)

type roomRequest struct {
	Name     string `json:"name"`
	Building string `json:"building"`
	Capacity any    `json:"capacity"` // number or text, validated by the service
	Note     string `json:"note"`
}

func (req roomRequest) input(id uint) services.RoomInput {
	return services.RoomInput{
		ID:       id,
		Name:     req.Name,
		Building: req.Building,
		Capacity: rawString(req.Capacity),
		Note:     req.Note,
	}
}

// GET /admin/rooms
func (e *Env) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := e.Svc.ListRooms(r.Context())
	if err != nil {
		e.fail(w, r, "list_rooms", err)
		return
	}
	ok(w, "", rooms)
}

// POST /admin/rooms
func (e *Env) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "save_room", err)
		return
	}
	room, err := e.Svc.SaveExamRoom(r.Context(), req.input(0), false)
	if err != nil {
		e.fail(w, r, "save_room", err)
		return
	}
	e.notice(r, "save_room", "Phòng thi %s đã được tạo (%d chỗ).", room.Name, room.Capacity)
	created(w, "Đã tạo phòng thi.", room)
}

// GET /admin/rooms/{id}
func (e *Env) ShowRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		e.fail(w, r, "show_room", err)
		return
	}
	room, err := e.Svc.GetRoom(r.Context(), id)
	if err != nil {
		e.fail(w, r, "show_room", err)
		return
	}
	ok(w, "", room)
}

// POST /admin/rooms/{id}
func (e *Env) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		e.fail(w, r, "save_room", err)
		return
	}
	var req roomRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "save_room", err)
		return
	}
	room, err := e.Svc.SaveExamRoom(r.Context(), req.input(id), true)
	if err != nil {
		e.fail(w, r, "save_room", err)
		return
	}
	e.notice(r, "save_room", "Phòng thi %s đã được cập nhật (%d chỗ).", room.Name, room.Capacity)
	ok(w, "Đã lưu phòng thi.", room)
}

// POST /admin/rooms/{id}/delete
func (e *Env) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = e.Svc.DeleteExamRoom(r.Context(), id)
	}
	if err != nil {
		e.fail(w, r, "delete_room", err)
		return
	}
	e.notice(r, "delete_room", "Phòng thi #%d đã bị xoá.", id)
	ok(w, "Đã xoá phòng thi.", nil)
}

type roomStatusRequest struct {
	Status string `json:"status"`
}

// POST /admin/rooms/{id}/status
func (e *Env) SetRoomStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		e.fail(w, r, "room_status", err)
		return
	}
	var req roomStatusRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "room_status", err)
		return
	}
	if err := e.Svc.UpdateRoomStatus(r.Context(), id, req.Status); err != nil {
		e.fail(w, r, "room_status", err)
		return
	}
	room, err := e.Svc.GetRoom(r.Context(), id)
	if err != nil {
		e.fail(w, r, "room_status", err)
		return
	}
	e.notice(r, "room_status", "Phòng thi %s chuyển sang trạng thái %s.", room.Name, room.Status)
	ok(w, "Đã cập nhật trạng thái phòng.", room)
}

// GET /admin/rooms/occupancy
func (e *Env) RoomOccupancy(w http.ResponseWriter, r *http.Request) {
	rows, sum, err := e.Svc.RoomOccupancy(r.Context())
	if err != nil {
		e.fail(w, r, "occupancy", err)
		return
	}
	ok(w, "", map[string]any{"rows": rows, "summary": sum})
}
