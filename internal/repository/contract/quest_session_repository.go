package contract

import (
	"context"
	"errors"

	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ErrVersionConflict is returned when an optimistic version check fails,
// i.e. a concurrent request updated the session first.
var ErrVersionConflict = errors.New("quest session version conflict")

type QuestSessionRepository interface {
	Create(ctx context.Context, session *entity.QuestSession) error
	// UpdateWithVersion persists the session only if the stored row still
	// carries the entity's Version; the stored version is bumped on
	// success. Returns ErrVersionConflict when another writer won.
	UpdateWithVersion(ctx context.Context, session *entity.QuestSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QuestSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuestSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
