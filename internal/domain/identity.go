package domain

import "strings"

// Storage keys used by the authentication collaborator.
const (
	KeyAuthToken = "auth-token"
	KeyUserData  = "user-data"
)

// StoredIdentity is the cached profile of the authenticated user.
type StoredIdentity struct {
	Token     string `json:"-"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func (id StoredIdentity) Authenticated() bool { return id.Token != "" }

// FullName joins first and last name with a single space when both are
// present, otherwise returns whichever part exists.
func (id StoredIdentity) FullName() string {
	first := strings.TrimSpace(id.FirstName)
	last := strings.TrimSpace(id.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

// Complete reports whether the identity carries enough to prefill a form
// without asking the remote profile endpoint.
func (id StoredIdentity) Complete() bool {
	return id.Email != "" && id.FullName() != ""
}

// Merge fills the empty fields of id from other. Values already present in
// id win.
func (id StoredIdentity) Merge(other StoredIdentity) StoredIdentity {
	if id.Token == "" {
		id.Token = other.Token
	}
	if id.Email == "" {
		id.Email = other.Email
	}
	if id.FirstName == "" {
		id.FirstName = other.FirstName
	}
	if id.LastName == "" {
		id.LastName = other.LastName
	}
	if id.Phone == "" {
		id.Phone = other.Phone
	}
	return id
}
