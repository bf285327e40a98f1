package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
)

// ProfileReader is the profile lookup the identity oracle reads from.
type ProfileReader interface {
	Get(ctx context.Context, userID string, collection gaushala.Collection) (domain.Profile, error)
}

// IdentityService answers role lookups. Roles never change after signup, so
// found roles are cached in process.
type IdentityService struct {
	profiles ProfileReader
	cache    *cache.Cache
}

func NewIdentityService(profiles ProfileReader, ttl time.Duration) *IdentityService {
	return &IdentityService{
		profiles: profiles,
		cache:    cache.New(ttl, 2*ttl),
	}
}

func (s *IdentityService) RoleFor(ctx context.Context, userID string, collection gaushala.Collection) (gaushala.Role, bool, error) {
	ctx, span := tracer.Start(ctx, "Identity.Service.RoleFor")
	defer span.End()

	key := string(collection) + ":" + userID
	if x, found := s.cache.Get(key); found {
		return x.(gaushala.Role), true, nil
	}

	profile, err := s.profiles.Get(ctx, userID, collection)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return "", false, nil
		}
		span.RecordError(err)
		return "", false, err
	}

	s.cache.Set(key, profile.Role, cache.DefaultExpiration)
	return profile.Role, true, nil
}
