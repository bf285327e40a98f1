package domain

import (
	"time"

	"github.com/gaushala-net/gaushala"
)

type WorkshopMode string

const (
	ModeOnline  WorkshopMode = "online"
	ModeOffline WorkshopMode = "offline"
)

// Registration is a registrant snapshot taken at registration time.
type Registration struct {
	UserID    string        `json:"id"`
	Name      string        `json:"name"`
	ContactNo string        `json:"contactNo"`
	Role      gaushala.Role `json:"role"`
}

type Workshop struct {
	ID                 string          `json:"id"`
	OwnerID            string          `json:"owner"`
	OwnerRole          gaushala.Role   `json:"role"`
	Owner              ProfileSnapshot `json:"profileData"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	DateFrom           time.Time       `json:"dateFrom"`
	DateTo             time.Time       `json:"dateTo"`
	TimeFrom           string          `json:"timeFrom"`
	TimeTo             string          `json:"timeTo"`
	Mode               WorkshopMode    `json:"mode"`
	Location           *string         `json:"location"`
	Link               *string         `json:"link"`
	Thumbnail          string          `json:"thumbnail"`
	Tags               []string        `json:"filters"`
	Registrations      []Registration  `json:"registrations"`
	CurrUserRegistered bool            `json:"currUserRegistered"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// IsRegistered reports whether the user is in the registrant set.
func (w Workshop) IsRegistered(userID string) bool {
	for _, r := range w.Registrations {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// ViewFor returns the workshop as userID may see it. Registrant details stay
// visible to the owner only.
func (w Workshop) ViewFor(userID string) Workshop {
	w.CurrUserRegistered = w.IsRegistered(userID)
	if w.OwnerID != userID {
		w.Registrations = []Registration{}
	}
	return w
}

// WorkshopFilter narrows a workshop listing. Empty fields match everything.
type WorkshopFilter struct {
	Tags      []string
	OwnerRole gaushala.Role
}
