package domain

import "github.com/gaushala-net/gaushala"

// Identity is the authenticated caller of a core operation.
// The zero value is an anonymous caller.
type Identity struct {
	UserID     string
	Collection gaushala.Collection
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// Profile is a user's signup record.
type Profile struct {
	ID         string                  `json:"id"`
	Collection gaushala.Collection     `json:"collection"`
	Role       gaushala.Role           `json:"role"`
	Name       string                  `json:"name"`
	ContactNo  string                  `json:"contactNo"`
	Address    string                  `json:"address,omitempty"`
	ProfilePic string                  `json:"profilePic,omitempty"`
	Details    gaushala.ProfileDetails `json:"details,omitempty"`
}

// ProfileSnapshot is the denormalized owner info captured at creation time.
type ProfileSnapshot struct {
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic"`
}
