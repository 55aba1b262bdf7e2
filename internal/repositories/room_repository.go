package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"portal-service/internal/models"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomRepository abstracts room persistence.
type RoomRepository interface {
	CreateRoom(ctx context.Context, name string, createdBy int) (models.Room, error)
	GetRoom(ctx context.Context, roomID int) (models.Room, error)
	ListRoomsForUser(ctx context.Context, userID int) ([]models.Room, error)
	AddMember(ctx context.Context, roomID int, userID int) error
	IsMember(ctx context.Context, roomID int, userID int) (bool, error)
	ListMemberIDs(ctx context.Context, roomID int) ([]int, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// CreateRoom inserts a room and enrolls the creator as its first member.
func (r *RoomRepo) CreateRoom(ctx context.Context, name string, createdBy int) (models.Room, error) {
	var room models.Room
	err := r.db.QueryRowxContext(ctx, `INSERT INTO rooms (name, created_by) VALUES ($1, $2) RETURNING id, name, created_by, created_at`, name, createdBy).
		Scan(&room.ID, &room.Name, &room.CreatedBy, &room.CreatedAt)
	if err != nil {
		return models.Room{}, err
	}
	if err := r.AddMember(ctx, room.ID, createdBy); err != nil {
		return models.Room{}, err
	}
	return room, nil
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT id, name, created_by, created_at FROM rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// ListRoomsForUser returns the rooms the user belongs to, newest first.
func (r *RoomRepo) ListRoomsForUser(ctx context.Context, userID int) ([]models.Room, error) {
	query := `SELECT r.id, r.name, r.created_by, r.created_at FROM rooms r
        JOIN room_members rm ON rm.room_id = r.id
        WHERE rm.user_id=$1
        ORDER BY r.created_at DESC`
	var rooms []models.Room
	err := r.db.SelectContext(ctx, &rooms, query, userID)
	return rooms, err
}

// AddMember enrolls a user into a room. Re-adding an existing member is a no-op.
func (r *RoomRepo) AddMember(ctx context.Context, roomID int, userID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO room_members (room_id, user_id) VALUES ($1, $2)
        ON CONFLICT (room_id, user_id) DO NOTHING`, roomID, userID)
	return err
}

// IsMember checks whether a user belongs to the room.
func (r *RoomRepo) IsMember(ctx context.Context, roomID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM room_members WHERE room_id=$1 AND user_id=$2)`, roomID, userID)
	return exists, err
}

// ListMemberIDs returns the user ids enrolled in the room.
func (r *RoomRepo) ListMemberIDs(ctx context.Context, roomID int) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM room_members WHERE room_id=$1 ORDER BY user_id`, roomID)
	return ids, err
}
