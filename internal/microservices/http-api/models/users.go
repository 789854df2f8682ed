package models

import "time"

// Roles a user can hold. Superuser and staff are separate flags.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username         string     `gorm:"size:150;uniqueIndex:uq_users_username;not null" json:"username"`
	Email            string     `gorm:"size:254;uniqueIndex:uq_users_email;not null" json:"email"`
	FirstName        string     `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName         string     `gorm:"size:150;not null;default:''" json:"last_name"`
	Bio              string     `gorm:"type:text;not null;default:''" json:"bio"`
	Role             string     `gorm:"size:16;not null;default:'user'" json:"role"`
	ConfirmationCode string     `gorm:"size:10;not null;default:''" json:"-"`
	Password         string     `gorm:"column:password_hash;not null;default:''" json:"-"` // blank = unusable
	IsActive         bool       `gorm:"not null;default:true" json:"-"`
	IsStaff          bool       `gorm:"not null;default:false" json:"-"`
	IsSuperuser      bool       `gorm:"not null;default:false" json:"-"`
	DateJoined       time.Time  `gorm:"autoCreateTime" json:"date_joined"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// HasUsablePassword reports whether password login is possible at all.
func (u *User) HasUsablePassword() bool {
	return u.Password != ""
}
