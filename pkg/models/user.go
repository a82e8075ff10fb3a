package models

import (
	"bytes"
	"encoding/json"
	"time"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ID is a backend identifier. The API is not consistent about emitting ids as
// strings or numbers, so both are accepted.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

type User struct {
	ID    ID        `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
	Date  time.Time `json:"date,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type AdminSummary struct {
	Count         int    `json:"count"`
	TotalProfiles int    `json:"totalProfiles"`
	TotalScans    int    `json:"totalScans"`
	Users         []User `json:"users"`
}

// UnmarshalJSON accepts both "id" and the document-style "_id".
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var w struct {
		plain
		DocID ID `json:"_id"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*u = User(w.plain)
	if u.ID == "" {
		u.ID = w.DocID
	}
	return nil
}
