package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email          string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash   *string   `gorm:"type:text"`
	DisplayName    string    `gorm:"type:text;not null"`
	ExternalUserId string    `gorm:"type:text;index"`
	Role           string    `gorm:"type:text;not null;default:'user'"`
	Status         string    `gorm:"type:text;not null;default:'active'"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
