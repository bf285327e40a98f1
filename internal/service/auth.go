package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/config"
	"github.com/gaushala-net/gaushala/internal/domain"
	"github.com/gaushala-net/gaushala/jwt"
)

var tracer = otel.Tracer("service")

type AuthService struct {
	config config.Auth
}

func NewAuthService(config config.Auth) *AuthService {
	return &AuthService{
		config: config,
	}
}

// AuthJwt turns a bearer token into the caller identity.
func (s *AuthService) AuthJwt(ctx context.Context, token string) (domain.Identity, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	claims, err := jwt.Validate(token, s.config.Secret, s.config.Audience)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	collection, ok := gaushala.ParseCollection(claims.Collection)
	if !ok {
		err := fmt.Errorf("%w: unknown collection %q", domain.ErrUnauthenticated, claims.Collection)
		span.RecordError(err)
		return domain.Identity{}, err
	}

	return domain.Identity{UserID: claims.ID, Collection: collection}, nil
}
