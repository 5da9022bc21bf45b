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
	"gorm.io/gorm/clause"
)

type PlayerProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ArchiveMapper
}

func NewPlayerProfileRepository(db *gorm.DB) contract.PlayerProfileRepository {
	return &PlayerProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewArchiveMapper(),
	}
}

func (r *PlayerProfileRepositoryImpl) Upsert(ctx context.Context, profile *entity.PlayerProfile) error {
	m := r.mapper.ProfileToModel(profile)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

func (r *PlayerProfileRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.PlayerProfile, error) {
	var m model.PlayerProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ProfileToEntity(&m), nil
}

func (r *PlayerProfileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PlayerProfile, error) {
	var models []*model.PlayerProfile
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PlayerProfile, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ProfileToEntity(m)
	}
	return entities, nil
}
