package user

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           string  `gorm:"primaryKey;type:text"`
	Email        string  `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string  `gorm:"not null;type:text"`
	Name         *string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Profile returns the public view of the user. The password hash is never part of it.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Profile is the public representation of a user.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is the owner block embedded in task responses.
type Summary struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Summary returns the short form of the profile.
func (p Profile) Summary() Summary {
	return Summary{ID: p.ID, Email: p.Email, Name: p.Name}
}

// Claims represents the identity carried by a session token.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
