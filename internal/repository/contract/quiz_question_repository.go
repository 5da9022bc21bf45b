package contract

import (
	"context"

	"ophiuchus-be/internal/entity"
)

type QuizQuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	// FindRandom draws n questions from the fallback bank.
	FindRandom(ctx context.Context, n int) ([]entity.Question, error)
	Count(ctx context.Context) (int64, error)
}
