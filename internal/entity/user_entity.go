package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type User struct {
	Id             uuid.UUID
	Email          string
	PasswordHash   *string
	DisplayName    string
	ExternalUserId string // streaming-service account id, if linked
	Role           UserRole
	Status         UserStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
