package models

import (
	"time"
)

type Profile struct {
	ID         string `json:"id" gorm:"primaryKey;type:text"`
	Collection string `json:"collection" gorm:"primaryKey;type:text"`
	Role       string `json:"role" gorm:"type:text;not null"`
	Name       string `json:"name" gorm:"type:text"`
	ContactNo  string `json:"contactNo" gorm:"type:text"`
	Address    string `json:"address" gorm:"type:text"`
	ProfilePic string `json:"profilePic" gorm:"type:text"`
	// Details holds the role tagged detail document.
	Details   string    `json:"details" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

type Post struct {
	ID                string            `json:"id" gorm:"primaryKey;type:text"`
	OwnerID           string            `json:"ownerId" gorm:"type:text;not null;uniqueIndex:uniq_post_content,priority:1"`
	OwnerRole         string            `json:"role" gorm:"type:text;index"`
	OwnerName         string            `json:"ownerName" gorm:"type:text"`
	OwnerPic          string            `json:"ownerPic" gorm:"type:text"`
	Body              string            `json:"content" gorm:"type:text"`
	MediaKind         *string           `json:"mediaKind" gorm:"type:text"`
	MediaURL          *string           `json:"mediaUrl" gorm:"type:text"`
	MediaDigest       *string           `json:"mediaDigest" gorm:"type:text"`
	VerificationState string            `json:"verificationState" gorm:"type:text;not null"`
	ContentHash       string            `json:"contentHash" gorm:"type:text;not null;uniqueIndex:uniq_post_content,priority:2"`
	Tags              []PostTag         `json:"tags" gorm:"foreignKey:PostID;references:ID"`
	Attestations      []PostAttestation `json:"attestations" gorm:"foreignKey:PostID;references:ID"`
	CreatedAt         time.Time         `json:"createdAt" gorm:"not null;index"`
	UpdatedAt         time.Time         `json:"updatedAt" gorm:"not null"`
}

type Workshop struct {
	ID            string                 `json:"id" gorm:"primaryKey;type:text"`
	OwnerID       string                 `json:"owner" gorm:"type:text;not null;index"`
	OwnerRole     string                 `json:"role" gorm:"type:text;index"`
	OwnerName     string                 `json:"ownerName" gorm:"type:text"`
	OwnerPic      string                 `json:"ownerPic" gorm:"type:text"`
	Title         string                 `json:"title" gorm:"type:text;not null"`
	Description   string                 `json:"description" gorm:"type:text"`
	DateFrom      time.Time              `json:"dateFrom" gorm:"not null;index"`
	DateTo        time.Time              `json:"dateTo" gorm:"not null"`
	TimeFrom      string                 `json:"timeFrom" gorm:"type:text"`
	TimeTo        string                 `json:"timeTo" gorm:"type:text"`
	Mode          string                 `json:"mode" gorm:"type:text;not null"`
	Location      *string                `json:"location" gorm:"type:text"`
	Link          *string                `json:"link" gorm:"type:text"`
	Thumbnail     string                 `json:"thumbnail" gorm:"type:text"`
	Tags          []WorkshopTag          `json:"tags" gorm:"foreignKey:WorkshopID;references:ID"`
	Registrations []WorkshopRegistration `json:"registrations" gorm:"foreignKey:WorkshopID;references:ID"`
	CreatedAt     time.Time              `json:"createdAt" gorm:"not null;index"`
	UpdatedAt     time.Time              `json:"updatedAt" gorm:"not null"`
}
