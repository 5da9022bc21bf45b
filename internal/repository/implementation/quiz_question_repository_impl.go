package implementation

import (
	"context"
	"encoding/json"

	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/model"
	"ophiuchus-be/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizQuestionRepositoryImpl struct {
	db *gorm.DB
}

func NewQuizQuestionRepository(db *gorm.DB) contract.QuizQuestionRepository {
	return &QuizQuestionRepositoryImpl{db: db}
}

func (r *QuizQuestionRepositoryImpl) Create(ctx context.Context, question *entity.Question) error {
	var accepted datatypes.JSON
	if len(question.AcceptedAnswers) > 0 {
		accepted, _ = json.Marshal(question.AcceptedAnswers)
	}
	m := &model.QuizQuestion{
		Id:              question.Id,
		Prompt:          question.Prompt,
		Answer:          question.Answer,
		AcceptedAnswers: accepted,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *QuizQuestionRepositoryImpl) FindRandom(ctx context.Context, n int) ([]entity.Question, error) {
	var models []*model.QuizQuestion
	err := r.db.WithContext(ctx).Order("RANDOM()").Limit(n).Find(&models).Error
	if err != nil {
		return nil, err
	}
	questions := make([]entity.Question, len(models))
	for i, m := range models {
		var accepted []string
		if len(m.AcceptedAnswers) > 0 {
			_ = json.Unmarshal(m.AcceptedAnswers, &accepted)
		}
		questions[i] = entity.Question{
			Id:              m.Id,
			Prompt:          m.Prompt,
			Answer:          m.Answer,
			AcceptedAnswers: accepted,
		}
	}
	return questions, nil
}

func (r *QuizQuestionRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.QuizQuestion{}).Count(&count).Error
	return count, err
}
