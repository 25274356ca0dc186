package domain

// User back-office account (users table). Read-only to the API.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password"`
	Type         int    `json:"type" db:"type"`
}
