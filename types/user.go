package types

import "time"

// User represents a registered account.
// The username is the natural primary key and appears as the foreign
// key on both ends of a message.
type User struct {
	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Phone is the user's contact phone number.
	Phone string `json:"phone" db:"phone"`

	// JoinAt is the timestamp when the account was created.
	JoinAt time.Time `json:"join_at" db:"join_at"`

	// LastLoginAt is the timestamp of the most recent successful login.
	LastLoginAt time.Time `json:"last_login_at" db:"last_login_at"`
}

// UserSummary is the public display projection of a user, embedded in
// message payloads and user listings.
type UserSummary struct {
	Username  string `json:"username" db:"username"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Phone     string `json:"phone" db:"phone"`
}

// Summary returns the display projection of the user.
func (u User) Summary() UserSummary {
	return UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}
