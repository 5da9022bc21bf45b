package contract

import (
	"context"

	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CompletedGameRepository interface {
	// Create appends an archive record. Rows are immutable; there is no
	// update method on purpose.
	Create(ctx context.Context, game *entity.CompletedGame) error
	FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.CompletedGame, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CompletedGame, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
