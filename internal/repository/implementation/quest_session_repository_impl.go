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

type QuestSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewQuestSessionRepository(db *gorm.DB) contract.QuestSessionRepository {
	return &QuestSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *QuestSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QuestSessionRepositoryImpl) Create(ctx context.Context, session *entity.QuestSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

// UpdateWithVersion guards the read-modify-write cycle: the UPDATE only
// lands when the row still carries the version the caller read. Losing
// the race surfaces as ErrVersionConflict instead of a silent lost
// update.
func (r *QuestSessionRepositoryImpl) UpdateWithVersion(ctx context.Context, session *entity.QuestSession) error {
	readVersion := session.Version
	session.Version = readVersion + 1
	m := r.mapper.ToModel(session)

	res := r.db.WithContext(ctx).
		Model(&model.QuestSession{}).
		Where("id = ? AND version = ?", m.Id, readVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		session.Version = readVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		session.Version = readVersion
		return contract.ErrVersionConflict
	}
	return nil
}

func (r *QuestSessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.QuestSession{}, id).Error
}

func (r *QuestSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QuestSession, error) {
	var m model.QuestSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *QuestSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuestSession, error) {
	var models []*model.QuestSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.QuestSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *QuestSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.QuestSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
