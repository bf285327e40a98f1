package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gaushala-net/gaushala/internal/domain"
)

var tracer = otel.Tracer("auth")

type Authenticator interface {
	AuthJwt(ctx context.Context, token string) (domain.Identity, error)
}

type identityKey struct{}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// IdentifyIdentity attaches the bearer token's identity to the request.
// Requests without a valid token continue as anonymous.
func (s *AuthMiddleware) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyIdentity")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")
		if authHeader != "" {
			authType, token, found := strings.Cut(authHeader, " ")
			switch {
			case !found:
				span.RecordError(fmt.Errorf("invalid authentication header"))
			case authType != "Bearer":
				span.RecordError(fmt.Errorf("only Bearer is acceptable"))
			default:
				id, err := s.auth.AuthJwt(ctx, token)
				if err != nil {
					span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyIdentity: s.auth.AuthJwt failed"))
					break
				}
				ctx = WithIdentity(ctx, id)
				span.SetAttributes(
					attribute.String("RequesterId", id.UserID),
					attribute.String("RequesterCollection", string(id.Collection)),
				)
			}
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller, or the anonymous identity.
func IdentityFrom(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(identityKey{}).(domain.Identity)
	return id
}
