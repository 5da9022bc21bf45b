package contract

import (
	"context"

	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PlayerProfileRepository interface {
	Upsert(ctx context.Context, profile *entity.PlayerProfile) error
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.PlayerProfile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PlayerProfile, error)
}
