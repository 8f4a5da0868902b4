package model

import (
	"fmt"
	"time"
)

// User is an account that can sign in: an admin or an employee.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// Employee statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Active reports whether the user may sign in.
func (u *User) Active() bool {
	return u.Status == UserStatusActive
}

// DisplayName is the full name with the username in parentheses.
func (u *User) DisplayName() string {
	if u.FullName == "" {
		return u.Username
	}
	return fmt.Sprintf("%s (%s)", u.FullName, u.Username)
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:    2,
		RoleEmployee: 1,
	}
	have, okRole := levels[role]
	need, okMin := levels[minimum]
	return okRole && okMin && have >= need
}

// ValidatePassword checks the password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
