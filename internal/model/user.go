package model

import "time"

// MaxDisplayNameLength bounds User.DisplayName.
const MaxDisplayNameLength = 50

// User represents a registered account.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	DisplayName  *string   `json:"displayName" gorm:"size:50"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

// UserProfile is the public view of a User returned by /users/me.
type UserProfile struct {
	ID          uint    `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName"`
}

// Profile strips everything but the public fields.
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}
