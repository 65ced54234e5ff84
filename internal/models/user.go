package models

import "time"

type User struct {
	ID        string
	Email     string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}

// Profile is the display data shown in greetings.
type Profile struct {
	UserID   string
	FullName string
}
