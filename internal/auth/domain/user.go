package domain

import "time"

// User is a request-scoped, read-only snapshot of a row in the LMS user
// table. The LMS owns the row; this service never writes to it apart from
// the last-login timestamp.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // opaque; encoding is inferred from the string itself
	FirstName    string
	LastName     string
	Email        string
	AuthMethod   string
	Confirmed    bool
	Deleted      bool
	Suspended    bool
	LastLoginAt  time.Time
}

// Identity is the normalized payload returned to the IDE front end after a
// successful authentication. It is handed over exactly once and never
// retained; there is no session or token entity.
type Identity struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
}
