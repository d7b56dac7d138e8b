package service

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/room"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"ctchen222/Tic-Tac-Toe-Solo/internal/telemetry"
	"errors"
	"log/slog"
)

// RoomStore is the part of the hub the REST API needs.
type RoomStore interface {
	CreateRoom(ctx context.Context, ownerID string) (*room.Room, error)
	OwnedRoom(id, ownerID string) (*room.Room, error)
	CloseRoom(ctx context.Context, id, reason string) bool
}

// SessionService drives game sessions on behalf of an authenticated player.
type SessionService interface {
	Create(ctx context.Context, ownerID string) (session.Snapshot, error)
	Get(ctx context.Context, ownerID, id string) (session.Snapshot, error)
	Move(ctx context.Context, ownerID, id string, cell int) (session.Snapshot, error)
	Reset(ctx context.Context, ownerID, id string) (session.Snapshot, error)
	Close(ctx context.Context, ownerID, id string) error
}

type sessionService struct {
	rooms   RoomStore
	metrics *telemetry.Metrics
}

// NewSessionService creates a SessionService backed by rooms.
func NewSessionService(rooms RoomStore, metrics *telemetry.Metrics) SessionService {
	return &sessionService{rooms: rooms, metrics: metrics}
}

func (s *sessionService) Create(ctx context.Context, ownerID string) (session.Snapshot, error) {
	r, err := s.rooms.CreateRoom(ctx, ownerID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return r.Session.Snapshot(), nil
}

func (s *sessionService) Get(ctx context.Context, ownerID, id string) (session.Snapshot, error) {
	r, err := s.rooms.OwnedRoom(id, ownerID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return r.Session.Snapshot(), nil
}

// Move plays the human's mark. The snapshot is taken right after the move, so the
// computer's reply usually shows up only on the next read.
func (s *sessionService) Move(ctx context.Context, ownerID, id string, cell int) (session.Snapshot, error) {
	r, err := s.rooms.OwnedRoom(id, ownerID)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := r.Session.PlayerMove(cell); err != nil {
		if errors.Is(err, session.ErrInvalidMove) {
			slog.WarnContext(ctx, "invalid move from player", "player.id", ownerID, "session.id", id, "move.cell", cell, "error", err)
			s.metrics.RecordRejectedMove(ctx)
		}
		return r.Session.Snapshot(), err
	}
	return r.Session.Snapshot(), nil
}

func (s *sessionService) Reset(ctx context.Context, ownerID, id string) (session.Snapshot, error) {
	r, err := s.rooms.OwnedRoom(id, ownerID)
	if err != nil {
		return session.Snapshot{}, err
	}
	r.Session.Reset()
	return r.Session.Snapshot(), nil
}

func (s *sessionService) Close(ctx context.Context, ownerID, id string) error {
	if _, err := s.rooms.OwnedRoom(id, ownerID); err != nil {
		return err
	}
	s.rooms.CloseRoom(ctx, id, "closed by owner")
	return nil
}
