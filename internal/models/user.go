package models

import "strings"

// User is a bank client. BirthDay is empty when unknown and is stored as NULL.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	BirthDay string `json:"birth_day,omitempty"`
	Accounts string `json:"accounts"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}
