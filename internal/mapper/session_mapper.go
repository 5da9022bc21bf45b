package mapper

import (
	"encoding/json"
	"time"

	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.QuestSession) *entity.QuestSession {
	if s == nil {
		return nil
	}

	var target entity.Song
	_ = json.Unmarshal(s.TargetSong, &target)

	var decoys []entity.Song
	_ = json.Unmarshal(s.DecoySongs, &decoys)

	var questions []entity.Question
	if len(s.QuizQuestions) > 0 {
		_ = json.Unmarshal(s.QuizQuestions, &questions)
	}

	rooms := make(map[entity.RoomKind]*entity.RoomState)
	_ = json.Unmarshal(s.Rooms, &rooms)

	var identity *entity.OphiuchusIdentity
	if len(s.Identity) > 0 {
		identity = &entity.OphiuchusIdentity{}
		if err := json.Unmarshal(s.Identity, identity); err != nil {
			identity = nil
		}
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.QuestSession{
		Id:                 s.Id,
		UserId:             s.UserId,
		ExternalUserId:     s.ExternalUserId,
		TargetSong:         target,
		DecoySongs:         decoys,
		InitialClue:        s.InitialClue,
		QuizQuestions:      questions,
		Rooms:              rooms,
		TotalPoints:        s.TotalPoints,
		FinalBonus:         s.FinalBonus,
		FinalGuessAttempts: s.FinalGuessAttempts,
		IsCompleted:        s.IsCompleted,
		Identity:           identity,
		Version:            s.Version,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          updatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.QuestSession) *model.QuestSession {
	if s == nil {
		return nil
	}

	target, _ := json.Marshal(s.TargetSong)
	decoys, _ := json.Marshal(s.DecoySongs)
	rooms, _ := json.Marshal(s.Rooms)

	var questions datatypes.JSON
	if len(s.QuizQuestions) > 0 {
		questions, _ = json.Marshal(s.QuizQuestions)
	}

	var identity datatypes.JSON
	if s.Identity != nil {
		identity, _ = json.Marshal(s.Identity)
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.QuestSession{
		Id:                 s.Id,
		UserId:             s.UserId,
		ExternalUserId:     s.ExternalUserId,
		TargetSong:         datatypes.JSON(target),
		DecoySongs:         datatypes.JSON(decoys),
		InitialClue:        s.InitialClue,
		QuizQuestions:      questions,
		Rooms:              datatypes.JSON(rooms),
		TotalPoints:        s.TotalPoints,
		FinalBonus:         s.FinalBonus,
		FinalGuessAttempts: s.FinalGuessAttempts,
		IsCompleted:        s.IsCompleted,
		Identity:           identity,
		Version:            s.Version,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          updatedAt,
	}
}
