package model

import (
	"time"

	"gorm.io/datatypes"
)

const InvalidUserID = 0

// Optional fields for user
type UserAttribute struct {
	Nickname string  `json:"nickname,omitempty"` // defaults to the username
	Phone    *string `json:"phone,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// User is the identity record. Credentials live in the external auth subsystem.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"uniqueIndex;type:varchar(150);not null" json:"username"`
	Email     string `gorm:"index;type:varchar(254);not null" json:"email"`
	Role      Role   `gorm:"index:role;not null;default:1" json:"-"`
	Status    Status `gorm:"index:status;not null;default:2" json:"-"`
	CreatedAt time.Time `json:"-"`

	Attributes datatypes.JSONType[UserAttribute] `json:"-"`
}

func (User) TableName() string { return "users" }

// IsOperator reports whether the user holds the site-operator capability.
func (u *User) IsOperator() bool {
	return u.Role == RoleOperator
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID   uint
	Username string
	Operator bool
}

func ActorOf(u *User) Actor {
	return Actor{UserID: u.ID, Username: u.Username, Operator: u.IsOperator()}
}
