package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStatus int

const (
	UserStatusActive    UserStatus = 1
	UserStatusDeleted   UserStatus = 2
	UserStatusNotActive UserStatus = 3
)

// User accounts are never physically deleted; lifecycle changes are status
// transitions only.
type User struct {
	ID           uuid.UUID  `gorm:"column:uuid;type:char(36);primaryKey" json:"uuid"`
	Phone        string     `gorm:"column:phone;type:varchar(20);uniqueIndex;not null" json:"phone"`
	Login        string     `gorm:"column:login;type:varchar(255);uniqueIndex;not null" json:"login"`
	Email        *string    `gorm:"column:email;type:varchar(320)" json:"email,omitempty"`
	FirstName    string     `gorm:"column:first_name;type:varchar(255);not null" json:"first_name"`
	LastName     string     `gorm:"column:last_name;type:varchar(255);not null" json:"last_name"`
	Password     string     `gorm:"column:password;type:varchar(255)" json:"-"`
	StatusID     UserStatus `gorm:"column:status_id;default:1" json:"status_id"`
	AvatarID     *uuid.UUID `gorm:"column:avatar_id;type:char(36)" json:"avatar_id,omitempty"`
	Role         string     `gorm:"column:role;type:varchar(50);default:'user'" json:"role"`
	IsOnline     *bool      `gorm:"column:is_online" json:"is_online,omitempty"`
	LastActivity *time.Time `gorm:"column:last_activity" json:"last_activity,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		u.ID = id
	}
	return nil
}
