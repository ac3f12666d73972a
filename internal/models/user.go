package models

import "time"

// Roles a user can hold. Role is only ever changed by an operator.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a customer or administrator of the store.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string     `json:"name" gorm:"index;type:varchar(100)"`
	Email        string     `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Institution  string     `json:"institution" gorm:"index;type:varchar(255)"`
	PhoneNo      string     `json:"phoneno" gorm:"column:phoneno;uniqueIndex;type:varchar(32)"`
	Password     string     `json:"-" gorm:"type:varchar(255)"` // bcrypt hash
	Role         string     `json:"role" gorm:"type:varchar(16);default:user;index"`
	Orders       []Order    `json:"orders,omitempty" gorm:"foreignKey:UserID"`
	RefreshToken *string    `json:"-" gorm:"type:text"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	OTP          *string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash
	OTPExpiry    *time.Time `json:"-"`
	OTPAttempts  int        `json:"-" gorm:"default:0"` // failed checks of the current code
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
