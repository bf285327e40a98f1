package models

import "time"

type PostTag struct {
	PostID   string `json:"postId" gorm:"primaryKey;type:text"`
	Position int    `json:"position" gorm:"primaryKey"`
	Tag      string `json:"tag" gorm:"type:text;not null;index"`
}

// PostAttestation rows form the attestation set; the key makes each attester count once.
type PostAttestation struct {
	PostID       string    `json:"postId" gorm:"primaryKey;type:text"`
	AttesterID   string    `json:"attesterId" gorm:"primaryKey;type:text"`
	AttesterRole string    `json:"attesterRole" gorm:"type:text;not null"`
	Name         string    `json:"name" gorm:"type:text"`
	ProfilePic   string    `json:"profilePic" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt" gorm:"not null"`
}

type WorkshopTag struct {
	WorkshopID string `json:"workshopId" gorm:"primaryKey;type:text"`
	Position   int    `json:"position" gorm:"primaryKey"`
	Tag        string `json:"tag" gorm:"type:text;not null;index"`
}

type WorkshopRegistration struct {
	WorkshopID string    `json:"workshopId" gorm:"primaryKey;type:text"`
	UserID     string    `json:"userId" gorm:"primaryKey;type:text"`
	Name       string    `json:"name" gorm:"type:text"`
	ContactNo  string    `json:"contactNo" gorm:"type:text"`
	Role       string    `json:"role" gorm:"type:text"`
	CreatedAt  time.Time `json:"createdAt" gorm:"not null"`
}

// OwnerIndex lists the items a user created, one row per item.
type OwnerIndex struct {
	OwnerID   string    `json:"ownerId" gorm:"primaryKey;type:text"`
	Kind      string    `json:"kind" gorm:"primaryKey;type:text"`
	ItemID    string    `json:"itemId" gorm:"primaryKey;type:text;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

// RegistrantIndex lists the workshops a user registered for.
type RegistrantIndex struct {
	UserID     string    `json:"userId" gorm:"primaryKey;type:text"`
	WorkshopID string    `json:"workshopId" gorm:"primaryKey;type:text;index"`
	CreatedAt  time.Time `json:"createdAt" gorm:"not null"`
}

func (OwnerIndex) TableName() string      { return "owner_index" }
func (RegistrantIndex) TableName() string { return "registrant_index" }
