package repository

import (
	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
	"github.com/gaushala-net/gaushala/internal/infra/database/models"
)

func postModel(p domain.Post) models.Post {
	m := models.Post{
		ID:                p.ID,
		OwnerID:           p.OwnerID,
		OwnerRole:         string(p.OwnerRole),
		OwnerName:         p.Owner.Name,
		OwnerPic:          p.Owner.ProfilePic,
		Body:              gaushala.EscapeNewlines(p.Body),
		VerificationState: string(p.VerificationState),
		ContentHash:       p.ContentHash,
		CreatedAt:         p.CreatedAt.UTC(),
		UpdatedAt:         p.UpdatedAt.UTC(),
	}
	if p.Media != nil {
		kind, url, digest := string(p.Media.Kind), p.Media.URL, p.Media.Digest
		m.MediaKind, m.MediaURL, m.MediaDigest = &kind, &url, &digest
	}
	return m
}

func postTags(postID string, tags []string) []models.PostTag {
	rows := make([]models.PostTag, 0, len(tags))
	for i, t := range tags {
		rows = append(rows, models.PostTag{PostID: postID, Position: i, Tag: t})
	}
	return rows
}

func postFromModel(m models.Post) domain.Post {
	p := domain.Post{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		OwnerRole: gaushala.Role(m.OwnerRole),
		Owner: domain.ProfileSnapshot{
			Name:       m.OwnerName,
			ProfilePic: m.OwnerPic,
		},
		Body:              gaushala.UnescapeNewlines(m.Body),
		VerificationState: domain.VerificationState(m.VerificationState),
		ContentHash:       m.ContentHash,
		Tags:              make([]string, 0, len(m.Tags)),
		Attestations:      make([]domain.Attestation, 0, len(m.Attestations)),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.MediaKind != nil && m.MediaURL != nil {
		p.Media = &domain.Media{Kind: domain.MediaKind(*m.MediaKind), URL: *m.MediaURL}
		if m.MediaDigest != nil {
			p.Media.Digest = *m.MediaDigest
		}
	}
	for _, t := range m.Tags {
		p.Tags = append(p.Tags, t.Tag)
	}
	p.Attestations = attestationsFromModel(m.Attestations)
	return p
}

func attestationsFromModel(rows []models.PostAttestation) []domain.Attestation {
	out := make([]domain.Attestation, 0, len(rows))
	for _, a := range rows {
		out = append(out, domain.Attestation{
			AttesterID:   a.AttesterID,
			AttesterRole: gaushala.Role(a.AttesterRole),
			Name:         a.Name,
			ProfilePic:   a.ProfilePic,
			CreatedAt:    a.CreatedAt,
		})
	}
	return out
}

func workshopModel(w domain.Workshop) models.Workshop {
	return models.Workshop{
		ID:          w.ID,
		OwnerID:     w.OwnerID,
		OwnerRole:   string(w.OwnerRole),
		OwnerName:   w.Owner.Name,
		OwnerPic:    w.Owner.ProfilePic,
		Title:       w.Title,
		Description: gaushala.EscapeNewlines(w.Description),
		DateFrom:    w.DateFrom.UTC(),
		DateTo:      w.DateTo.UTC(),
		TimeFrom:    w.TimeFrom,
		TimeTo:      w.TimeTo,
		Mode:        string(w.Mode),
		Location:    w.Location,
		Link:        w.Link,
		Thumbnail:   w.Thumbnail,
		CreatedAt:   w.CreatedAt.UTC(),
		UpdatedAt:   w.UpdatedAt.UTC(),
	}
}

func workshopTags(workshopID string, tags []string) []models.WorkshopTag {
	rows := make([]models.WorkshopTag, 0, len(tags))
	for i, t := range tags {
		rows = append(rows, models.WorkshopTag{WorkshopID: workshopID, Position: i, Tag: t})
	}
	return rows
}

func workshopFromModel(m models.Workshop) domain.Workshop {
	w := domain.Workshop{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		OwnerRole: gaushala.Role(m.OwnerRole),
		Owner: domain.ProfileSnapshot{
			Name:       m.OwnerName,
			ProfilePic: m.OwnerPic,
		},
		Title:         m.Title,
		Description:   gaushala.UnescapeNewlines(m.Description),
		DateFrom:      m.DateFrom,
		DateTo:        m.DateTo,
		TimeFrom:      m.TimeFrom,
		TimeTo:        m.TimeTo,
		Mode:          domain.WorkshopMode(m.Mode),
		Thumbnail:     m.Thumbnail,
		Tags:          make([]string, 0, len(m.Tags)),
		Registrations: make([]domain.Registration, 0, len(m.Registrations)),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	// Only the field matching the mode is exposed.
	if w.Mode == domain.ModeOffline {
		w.Location = m.Location
	} else {
		w.Link = m.Link
	}
	for _, t := range m.Tags {
		w.Tags = append(w.Tags, t.Tag)
	}
	for _, r := range m.Registrations {
		w.Registrations = append(w.Registrations, domain.Registration{
			UserID:    r.UserID,
			Name:      r.Name,
			ContactNo: r.ContactNo,
			Role:      gaushala.Role(r.Role),
		})
	}
	return w
}

func profileModel(p domain.Profile) (models.Profile, error) {
	details, err := gaushala.MarshalProfileDetails(p.Details)
	if err != nil {
		return models.Profile{}, err
	}
	return models.Profile{
		ID:         p.ID,
		Collection: string(p.Collection),
		Role:       string(p.Role),
		Name:       p.Name,
		ContactNo:  p.ContactNo,
		Address:    p.Address,
		ProfilePic: p.ProfilePic,
		Details:    string(details),
	}, nil
}

func profileFromModel(m models.Profile) (domain.Profile, error) {
	details, err := gaushala.UnmarshalProfileDetails([]byte(m.Details))
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		ID:         m.ID,
		Collection: gaushala.Collection(m.Collection),
		Role:       gaushala.Role(m.Role),
		Name:       m.Name,
		ContactNo:  m.ContactNo,
		Address:    m.Address,
		ProfilePic: m.ProfilePic,
		Details:    details,
	}, nil
}
