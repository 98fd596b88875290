// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account.
// PasswordHash is never serialized; use View for anything leaving the process.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialize
	DisplayName  *string   `json:"name"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserView is the public projection of a user.
type UserView struct {
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	DisplayName *string `json:"name"`
}

// View returns the public projection of the user.
func (u *User) View() UserView {
	return UserView{
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}

// UserCreateResponse is returned after registration.
type UserCreateResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	DisplayName *string `json:"name"`
}

// ToCreateResponse converts a User to UserCreateResponse.
func (u *User) ToCreateResponse() UserCreateResponse {
	return UserCreateResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	if u.DisplayName != nil {
		name := *u.DisplayName
		c.DisplayName = &name
	}
	return &c
}
