package repository

import (
	"context"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
)

// SessionRepository stores game sessions. Missing sessions yield apperror.ErrSessionNotFound.
type SessionRepository interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}
