package implementation

import (
	"context"
	"errors"

	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/mapper"
	"ophiuchus-be/internal/model"
	"ophiuchus-be/internal/repository/contract"
	"ophiuchus-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompletedGameRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ArchiveMapper
}

func NewCompletedGameRepository(db *gorm.DB) contract.CompletedGameRepository {
	return &CompletedGameRepositoryImpl{
		db:     db,
		mapper: mapper.NewArchiveMapper(),
	}
}

func (r *CompletedGameRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CompletedGameRepositoryImpl) Create(ctx context.Context, game *entity.CompletedGame) error {
	m := r.mapper.CompletedGameToModel(game)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*game = *r.mapper.CompletedGameToEntity(m)
	return nil
}

func (r *CompletedGameRepositoryImpl) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.CompletedGame, error) {
	var models []*model.CompletedGame
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("completed_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.CompletedGame, len(models))
	for i, m := range models {
		entities[i] = r.mapper.CompletedGameToEntity(m)
	}
	return entities, nil
}

func (r *CompletedGameRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CompletedGame, error) {
	var m model.CompletedGame
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CompletedGameToEntity(&m), nil
}

func (r *CompletedGameRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CompletedGame{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
