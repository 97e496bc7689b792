package core

import (
	"errors"
	"strings"
)

var ErrEmptyUserID = errors.New("user id is required")

// User is the profile handed over by the identity provider after sign-in.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
}

// Validate only requires an id; the rest is display data.
func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrEmptyUserID
	}
	return nil
}
