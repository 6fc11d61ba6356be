package user

import "time"

type User struct {
	ID           int
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}

// Credentials is the body of both auth endpoints.
type Credentials struct {
	Login    string `json:"login" minLength:"3" maxLength:"32"`
	Password string `json:"password" minLength:"8" maxLength:"72"`
}
