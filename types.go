package gaushala

import (
	"encoding/json"
	"fmt"
)

// Role is the account kind a profile was signed up as.
type Role string

const (
	RoleDoctor              Role = "doctor"
	RoleResearchInstitution Role = "researchInstitution"
	RoleFarmer              Role = "farmer"
	RoleNGO                 Role = "ngo"
	RoleVolunteer           Role = "volunteer"
)

// Collection is the profile store a user lives in.
type Collection string

const (
	CollectionExperts Collection = "experts"
	CollectionFarmers Collection = "farmers"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleDoctor, RoleResearchInstitution, RoleFarmer, RoleNGO, RoleVolunteer:
		return r, true
	default:
		return "", false
	}
}

// CanAttest reports whether the role may verify posts.
func (r Role) CanAttest() bool {
	return r == RoleDoctor || r == RoleResearchInstitution
}

// Collection returns the collection profiles of this role are stored in.
func (r Role) Collection() Collection {
	if r == RoleFarmer {
		return CollectionFarmers
	}
	return CollectionExperts
}

func ParseCollection(s string) (Collection, bool) {
	switch c := Collection(s); c {
	case CollectionExperts, CollectionFarmers:
		return c, true
	default:
		return "", false
	}
}

// ProfileDetails is the role specific part of a profile.
// Each variant carries only the fields its role signs up with.
type ProfileDetails interface {
	Role() Role
}

type DoctorDetails struct {
	UniqueID        int64  `json:"uniqueId"`
	Education       string `json:"education"`
	YearsOfPractice int    `json:"yearsOfPractice"`
	State           string `json:"state"`
	City            string `json:"city"`
}

type NGODetails struct {
	Organization string `json:"organization"`
	State        string `json:"state"`
	City         string `json:"city"`
}

type ResearchInstitutionDetails struct {
	ResearchArea string `json:"researchArea"`
	State        string `json:"state"`
	City         string `json:"city"`
}

type VolunteerDetails struct {
	Education string `json:"education"`
	State     string `json:"state"`
	City      string `json:"city"`
}

type FarmerDetails struct{}

func (DoctorDetails) Role() Role              { return RoleDoctor }
func (NGODetails) Role() Role                 { return RoleNGO }
func (ResearchInstitutionDetails) Role() Role { return RoleResearchInstitution }
func (VolunteerDetails) Role() Role           { return RoleVolunteer }
func (FarmerDetails) Role() Role              { return RoleFarmer }

type taggedDetails struct {
	Role    Role            `json:"role"`
	Details json.RawMessage `json:"details"`
}

// MarshalProfileDetails encodes a variant together with its role tag.
func MarshalProfileDetails(d ProfileDetails) ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	body, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taggedDetails{Role: d.Role(), Details: body})
}

// UnmarshalProfileDetails decodes the output of MarshalProfileDetails.
func UnmarshalProfileDetails(data []byte) (ProfileDetails, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var tagged taggedDetails
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, err
	}

	var d ProfileDetails
	switch tagged.Role {
	case RoleDoctor:
		d = &DoctorDetails{}
	case RoleNGO:
		d = &NGODetails{}
	case RoleResearchInstitution:
		d = &ResearchInstitutionDetails{}
	case RoleVolunteer:
		d = &VolunteerDetails{}
	case RoleFarmer:
		return FarmerDetails{}, nil
	default:
		return nil, fmt.Errorf("unknown profile role %q", tagged.Role)
	}

	if len(tagged.Details) > 0 {
		if err := json.Unmarshal(tagged.Details, d); err != nil {
			return nil, err
		}
	}

	switch v := d.(type) {
	case *DoctorDetails:
		return *v, nil
	case *NGODetails:
		return *v, nil
	case *ResearchInstitutionDetails:
		return *v, nil
	case *VolunteerDetails:
		return *v, nil
	}
	return d, nil
}

// Event is pushed over the realtime channel after a commit lands.
type Event struct {
	Type     string `json:"type"`
	ItemID   string `json:"itemId"`
	ActorID  string `json:"actorId"`
	Resource string `json:"resource"`
}

const (
	EventPostCreated        = "post.created"
	EventPostAttested       = "post.attested"
	EventWorkshopCreated    = "workshop.created"
	EventWorkshopRegistered = "workshop.registered"
)
