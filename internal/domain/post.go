package domain

import (
	"encoding/base64"
	"time"

	"github.com/gaushala-net/gaushala"
)

type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

func (k MediaKind) Valid() bool {
	return k == MediaImage || k == MediaVideo || k == MediaDocument
}

// Media is the single attachment a post may carry.
type Media struct {
	Kind MediaKind `json:"kind"`
	URL  string    `json:"url"`
	// Digest identifies the uploaded bytes for duplicate detection.
	Digest string `json:"-"`
}

// MediaPayload is an attachment that has not been uploaded yet.
type MediaPayload struct {
	Kind        MediaKind `json:"kind"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"data"`
}

type VerificationState string

const (
	Unverified       VerificationState = "unverified"
	PendingByDefault VerificationState = "pending"
	Verified         VerificationState = "verified"
)

// InitialVerificationState maps the gate's review flag to the entry state.
func InitialVerificationState(needsReview bool) VerificationState {
	if needsReview {
		return PendingByDefault
	}
	return Unverified
}

// Attestation is one expert's endorsement of a post.
type Attestation struct {
	AttesterID   string        `json:"id"`
	AttesterRole gaushala.Role `json:"role"`
	Name         string        `json:"name"`
	ProfilePic   string        `json:"profilePic,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

type Post struct {
	ID                string            `json:"id"`
	OwnerID           string            `json:"ownerId"`
	OwnerRole         gaushala.Role     `json:"role"`
	Owner             ProfileSnapshot   `json:"profileData"`
	Body              string            `json:"content"`
	Media             *Media            `json:"media,omitempty"`
	Tags              []string          `json:"filters"`
	VerificationState VerificationState `json:"verificationState"`
	Attestations      []Attestation     `json:"verified"`
	ContentHash       string            `json:"-"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// HasAttestation reports whether the given user already attested the post.
func (p Post) HasAttestation(userID string) bool {
	for _, a := range p.Attestations {
		if a.AttesterID == userID {
			return true
		}
	}
	return false
}

// PostFilter narrows a post listing. Empty fields match everything.
type PostFilter struct {
	Tags      []string
	OwnerRole gaushala.Role
}

// EncodedMedia is a payload in the shape the classification service expects.
type EncodedMedia struct {
	MimeType string
	Base64   string
}

func (p MediaPayload) Encode() EncodedMedia {
	return EncodedMedia{
		MimeType: p.ContentType,
		Base64:   base64.StdEncoding.EncodeToString(p.Data),
	}
}
