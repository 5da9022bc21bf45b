package unitofwork

import (
	"context"

	"ophiuchus-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	QuestSessionRepository() contract.QuestSessionRepository
	CompletedGameRepository() contract.CompletedGameRepository
	PlayerProfileRepository() contract.PlayerProfileRepository
	QuizQuestionRepository() contract.QuizQuestionRepository
	UserRepository() contract.UserRepository
}
