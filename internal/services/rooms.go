package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/certhub/examdesk/internal/models"
)

// RoomInput is the editable part of an exam room. Capacity arrives as raw
// text from forms and JSON alike and is parsed by ParseCapacity.
type RoomInput struct {
	ID       uint
	Name     string `validate:"required,max=100"`
	Building string `validate:"max=100"`
	Capacity string
	Note     string `validate:"max=500"`
}

// ParseCapacity accepts only positive integers.
func ParseCapacity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: capacity must be a positive integer, got %q", ErrValidation, raw)
	}
	return n, nil
}

// SaveExamRoom inserts a room, or updates it when isUpdate is set.
// A capacity below the current number of assigned candidates is refused.
func (s *Service) SaveExamRoom(ctx context.Context, in RoomInput, isUpdate bool) (view RoomView, err error) {
	defer func(start time.Time) { s.finish(ctx, "save_room", start, err) }(time.Now())

	in.Name = strings.TrimSpace(in.Name)
	in.Building = strings.TrimSpace(in.Building)
	in.Note = strings.TrimSpace(in.Note)
	if err = validateStruct(in); err != nil {
		return RoomView{}, err
	}
	capacity, err := ParseCapacity(in.Capacity)
	if err != nil {
		return RoomView{}, err
	}
	if isUpdate && in.ID == 0 {
		return RoomView{}, fmt.Errorf("%w: room id required for update", ErrValidation)
	}

	err = s.tx(ctx, func(tx *gorm.DB) error {
		var room models.ExamRoom
		var assigned int64
		if isUpdate {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, in.ID).Error; err != nil {
				return lookupErr("room", err)
			}
			n, err := countAssigned(tx, room.ID)
			if err != nil {
				return err
			}
			if int64(capacity) < n {
				return fmt.Errorf("%w: capacity %d is below the %d assigned candidates", ErrValidation, capacity, n)
			}
			assigned = n
		} else {
			room.Status = models.RoomAvailable
		}

		room.Name = in.Name
		room.Building = in.Building
		room.Capacity = capacity
		room.Note = in.Note

		if err := tx.Save(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: room name %q already used", ErrValidation, room.Name)
			}
			return storeErr("save room", err)
		}
		view = MapRoom(room, assigned)
		return nil
	})
	return view, err
}

// AssignCandidateToRoom points the candidate's ticket at roomID when the
// room has a free seat. The seat check and the write are one conditional
// UPDATE, so concurrent assignments cannot overshoot capacity.
func (s *Service) AssignCandidateToRoom(ctx context.Context, candidateNumber string, roomID uint) (err error) {
	defer func(start time.Time) { s.finish(ctx, "assign_room", start, err) }(time.Now())

	return s.tx(ctx, func(tx *gorm.DB) error {
		var room models.ExamRoom
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, roomID).Error; err != nil {
			return lookupErr("room", err)
		}
		ticket, err := findTicket(tx, candidateNumber)
		if err != nil {
			return err
		}
		if ticket.RoomID != nil && *ticket.RoomID == room.ID {
			return nil
		}

		res := tx.Model(&models.ExamTicket{}).
			Where("ticket_id = ?", ticket.TicketID).
			Where("(SELECT COUNT(*) FROM exam_tickets WHERE room_id = ?) < ?", room.ID, room.Capacity).
			Update("room_id", room.ID)
		if res.Error != nil {
			return storeErr("assign room", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: room %q seats %d", ErrCapacityExceeded, room.Name, room.Capacity)
		}
		return nil
	})
}

// RemoveCandidateFromRoom clears the ticket's room reference.
func (s *Service) RemoveCandidateFromRoom(ctx context.Context, candidateNumber string) (err error) {
	defer func(start time.Time) { s.finish(ctx, "unassign_room", start, err) }(time.Now())

	return s.tx(ctx, func(tx *gorm.DB) error {
		ticket, err := findTicket(tx, candidateNumber)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.ExamTicket{}).
			Where("ticket_id = ?", ticket.TicketID).
			Update("room_id", gorm.Expr("NULL")).Error; err != nil {
			return storeErr("unassign room", err)
		}
		return nil
	})
}

// DeleteExamRoom removes an empty room.
func (s *Service) DeleteExamRoom(ctx context.Context, roomID uint) (err error) {
	defer func(start time.Time) { s.finish(ctx, "delete_room", start, err) }(time.Now())

	return s.tx(ctx, func(tx *gorm.DB) error {
		var room models.ExamRoom
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, roomID).Error; err != nil {
			return lookupErr("room", err)
		}
		n, err := countAssigned(tx, room.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %q has %d candidates", ErrRoomNotEmpty, room.Name, n)
		}
		if err := tx.Delete(&models.ExamRoom{}, room.ID).Error; err != nil {
			return storeErr("delete room", err)
		}
		return nil
	})
}

// UpdateRoomStatus toggles available/maintenance. Occupancy is not checked.
func (s *Service) UpdateRoomStatus(ctx context.Context, roomID uint, status string) (err error) {
	defer func(start time.Time) { s.finish(ctx, "room_status", start, err) }(time.Now())

	status = strings.ToLower(strings.TrimSpace(status))
	if status != models.RoomAvailable && status != models.RoomMaintenance {
		return fmt.Errorf("%w: room status must be %q or %q", ErrValidation, models.RoomAvailable, models.RoomMaintenance)
	}
	res := s.conn(ctx).Model(&models.ExamRoom{}).Where("id = ?", roomID).Update("status", status)
	if res.Error != nil {
		return storeErr("update room status", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("room %d: %w", roomID, ErrNotFound)
	}
	return nil
}

// GetRoom returns one room with its live occupancy.
func (s *Service) GetRoom(ctx context.Context, roomID uint) (RoomView, error) {
	conn := s.conn(ctx)
	var room models.ExamRoom
	if err := conn.First(&room, roomID).Error; err != nil {
		return RoomView{}, lookupErr("room", err)
	}
	n, err := countAssigned(conn, room.ID)
	if err != nil {
		return RoomView{}, err
	}
	return MapRoom(room, n), nil
}

// ListRooms returns every room ordered by building and name.
func (s *Service) ListRooms(ctx context.Context) ([]RoomView, error) {
	conn := s.conn(ctx)
	var rooms []models.ExamRoom
	if err := conn.Order("building asc, name asc").Find(&rooms).Error; err != nil {
		return nil, storeErr("list rooms", err)
	}
	counts, err := assignedByRoom(conn)
	if err != nil {
		return nil, err
	}
	out := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, MapRoom(r, counts[r.ID].Assigned))
	}
	return out, nil
}

// UnassignedTickets lists tickets of a session that have no room yet.
func (s *Service) UnassignedTickets(ctx context.Context, sessionID uint) ([]TicketView, error) {
	return s.TicketRoster(ctx, RosterFilter{SessionID: sessionID, Unassigned: true})
}

func countAssigned(tx *gorm.DB, roomID uint) (int64, error) {
	var n int64
	if err := tx.Model(&models.ExamTicket{}).Where("room_id = ?", roomID).Count(&n).Error; err != nil {
		return 0, storeErr("count assigned", err)
	}
	return n, nil
}

type roomAgg struct {
	RoomID   uint
	Assigned int64
	Taken    int64
}

// assignedByRoom aggregates occupancy for every room in one query.
func assignedByRoom(tx *gorm.DB) (map[uint]roomAgg, error) {
	var aggs []roomAgg
	if err := tx.Table("exam_tickets").
		Select(`room_id,
			COUNT(*) AS assigned,
			SUM(CASE WHEN status = 'taken' THEN 1 ELSE 0 END) AS taken`).
		Where("room_id IS NOT NULL").
		Group("room_id").
		Scan(&aggs).Error; err != nil {
		return nil, storeErr("aggregate occupancy", err)
	}
	out := make(map[uint]roomAgg, len(aggs))
	for _, a := range aggs {
		out[a.RoomID] = a
	}
	return out, nil
}

func findTicket(tx *gorm.DB, candidateNumber string) (models.ExamTicket, error) {
	var t models.ExamTicket
	number := strings.TrimSpace(candidateNumber)
	if number == "" {
		return t, fmt.Errorf("%w: candidate number required", ErrValidation)
	}
	if err := tx.Where("candidate_number = ?", number).First(&t).Error; err != nil {
		return t, lookupErr("ticket "+number, err)
	}
	return t, nil
}

// GetTicket looks a ticket up by candidate number.
func (s *Service) GetTicket(ctx context.Context, candidateNumber string) (models.ExamTicket, error) {
	return findTicket(s.conn(ctx), candidateNumber)
}
