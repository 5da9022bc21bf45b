package mapper

import (
	"encoding/json"

	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/model"

	"gorm.io/datatypes"
)

type ArchiveMapper struct{}

func NewArchiveMapper() *ArchiveMapper {
	return &ArchiveMapper{}
}

func (m *ArchiveMapper) CompletedGameToEntity(g *model.CompletedGame) *entity.CompletedGame {
	if g == nil {
		return nil
	}

	var target entity.Song
	_ = json.Unmarshal(g.TargetSong, &target)

	var identity *entity.OphiuchusIdentity
	if len(g.Identity) > 0 {
		identity = &entity.OphiuchusIdentity{}
		if err := json.Unmarshal(g.Identity, identity); err != nil {
			identity = nil
		}
	}

	roomPoints := make(map[entity.RoomKind]int)
	_ = json.Unmarshal(g.RoomPoints, &roomPoints)

	return &entity.CompletedGame{
		Id:                 g.Id,
		UserId:             g.UserId,
		SessionId:          g.SessionId,
		TargetSong:         target,
		Identity:           identity,
		TotalPoints:        g.TotalPoints,
		RoomPoints:         roomPoints,
		FinalGuessAttempts: g.FinalGuessAttempts,
		Won:                g.Won,
		CompletedAt:        g.CompletedAt,
	}
}

func (m *ArchiveMapper) CompletedGameToModel(g *entity.CompletedGame) *model.CompletedGame {
	if g == nil {
		return nil
	}

	target, _ := json.Marshal(g.TargetSong)
	roomPoints, _ := json.Marshal(g.RoomPoints)

	var identity datatypes.JSON
	if g.Identity != nil {
		identity, _ = json.Marshal(g.Identity)
	}

	return &model.CompletedGame{
		Id:                 g.Id,
		UserId:             g.UserId,
		SessionId:          g.SessionId,
		TargetSong:         datatypes.JSON(target),
		Identity:           identity,
		TotalPoints:        g.TotalPoints,
		RoomPoints:         datatypes.JSON(roomPoints),
		FinalGuessAttempts: g.FinalGuessAttempts,
		Won:                g.Won,
		CompletedAt:        g.CompletedAt,
	}
}

func (m *ArchiveMapper) ProfileToEntity(p *model.PlayerProfile) *entity.PlayerProfile {
	if p == nil {
		return nil
	}
	return &entity.PlayerProfile{
		UserId:         p.UserId,
		LifetimePoints: p.LifetimePoints,
		GamesPlayed:    p.GamesPlayed,
		GamesWon:       p.GamesWon,
		BestGamePoints: p.BestGamePoints,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (m *ArchiveMapper) ProfileToModel(p *entity.PlayerProfile) *model.PlayerProfile {
	if p == nil {
		return nil
	}
	return &model.PlayerProfile{
		UserId:         p.UserId,
		LifetimePoints: p.LifetimePoints,
		GamesPlayed:    p.GamesPlayed,
		GamesWon:       p.GamesWon,
		BestGamePoints: p.BestGamePoints,
		UpdatedAt:      p.UpdatedAt,
	}
}
