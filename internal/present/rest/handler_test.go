package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gaushala-net/gaushala/internal/config"
	"github.com/gaushala-net/gaushala/internal/domain"
	"github.com/gaushala-net/gaushala/internal/infra/database"
	"github.com/gaushala-net/gaushala/internal/infra/repository"
	"github.com/gaushala-net/gaushala/internal/present/rest/middleware"
	"github.com/gaushala-net/gaushala/internal/service"
	"github.com/gaushala-net/gaushala/internal/usecase"
	"github.com/gaushala-net/gaushala/jwt"
)

var testAuth = config.Auth{Secret: "test-secret", Audience: "gaushala.test"}

// stubClassifier answers both the gate and the categorizer with one text.
type stubClassifier struct {
	answer string
}

func (s *stubClassifier) Generate(ctx context.Context, prompt string, media *domain.EncodedMedia) (string, error) {
	return s.answer, nil
}

type stubStorage struct{}

func (stubStorage) Upload(ctx context.Context, file domain.MediaPayload) (string, error) {
	return "https://media.test/" + file.Filename, nil
}

type testServer struct {
	e          *echo.Echo
	classifier *stubClassifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqldb, err := db.DB()
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })
	require.NoError(t, database.Migrate(db))

	profiles := repository.NewProfileRepository(db)
	posts := repository.NewPostRepository(db)
	workshops := repository.NewWorkshopRepository(db)

	classifier := &stubClassifier{answer: `{"relevant": true, "needsReview": true} ["cow health"]`}
	identity := service.NewIdentityService(profiles, time.Minute)

	handler := NewHandler(
		usecase.NewPostUsecase(
			usecase.NewContentGate(classifier),
			usecase.NewCategorizer(classifier),
			posts, profiles, stubStorage{}, nil,
		),
		usecase.NewVerificationUsecase(posts, profiles, identity, nil),
		usecase.NewWorkshopUsecase(workshops, profiles, stubStorage{}, nil, time.UTC),
		usecase.NewRegistrationUsecase(workshops, profiles, nil),
		usecase.NewProfileUsecase(profiles),
		nil,
	)

	e := echo.New()
	e.Use(middleware.NewAuthMiddleware(service.NewAuthService(testAuth)).IdentifyIdentity)
	handler.RegisterRoutes(e)

	return &testServer{e: e, classifier: classifier}
}

func token(t *testing.T, userID, collection string) string {
	t.Helper()
	tok, err := jwt.Create(jwt.Claims{
		Collection: collection,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        userID,
			Audience:  gojwt.ClaimStrings{testAuth.Audience},
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testAuth.Secret)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (s *testServer) signup(t *testing.T) (farmer, doctor string) {
	t.Helper()

	farmer = token(t, "farmer-1", "farmers")
	doctor = token(t, "doctor-1", "experts")

	rec := s.do(t, http.MethodPut, "/api/v1/profile", farmer, map[string]any{
		"role":      "farmer",
		"name":      "Ramesh",
		"contactNo": "9999999999",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/v1/profile", doctor, map[string]any{
		"role":      "doctor",
		"name":      "Anita Rao",
		"contactNo": "8888888888",
		"details": map[string]any{
			"uniqueId":        1042,
			"education":       "BVSc",
			"yearsOfPractice": 12,
			"state":           "Gujarat",
			"city":            "Anand",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return farmer, doctor
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, doctor := s.signup(t)

	rec := s.do(t, http.MethodGet, "/api/v1/profile", doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[map[string]any](t, rec)
	assert.Equal(t, "doctor", profile["role"])
	assert.Equal(t, "experts", profile["collection"])

	rec = s.do(t, http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a farmer token cannot sign up into the experts collection
	rec = s.do(t, http.MethodPut, "/api/v1/profile", token(t, "farmer-2", "farmers"), map[string]any{
		"role":      "ngo",
		"name":      "Seva",
		"contactNo": "7777777777",
		"details":   map[string]any{"organization": "Seva Trust"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/profile", doctor, map[string]any{
		"role":      "wizard",
		"name":      "x",
		"contactNo": "1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostVerificationFlow(t *testing.T) {
	s := newTestServer(t)
	farmer, doctor := s.signup(t)

	rec := s.do(t, http.MethodPost, "/api/v1/posts", farmer, map[string]any{
		"content": "My cow has stopped eating since yesterday",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post := decode[domain.Post](t, rec)
	assert.Equal(t, domain.PendingByDefault, post.VerificationState)
	assert.Equal(t, []string{"cow health"}, post.Tags)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/"+post.ID+"/verification", farmer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.LabelUnderVerification, decode[usecase.VerificationStatus](t, rec).Label)

	rec = s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/attest", farmer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/attest", doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// a second attestation by the same doctor is a no-op
	rec = s.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/attest", doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stored := decode[domain.Post](t, rec)
	assert.Equal(t, domain.Verified, stored.VerificationState)
	assert.Len(t, stored.Attestations, 1)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/"+post.ID+"/verification", doctor, nil)
	assert.Equal(t, usecase.LabelVerifiedByYou, decode[usecase.VerificationStatus](t, rec).Label)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/"+post.ID+"/attesters", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	attesters := decode[[]usecase.Attester](t, rec)
	require.Len(t, attesters, 1)
	assert.Equal(t, "Dr. Anita Rao", attesters[0].DisplayName)

	rec = s.do(t, http.MethodGet, "/api/v1/posts?tags=cow%20health&role=farmer", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Post](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/v1/posts?role=doctor", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.Post](t, rec))

	rec = s.do(t, http.MethodGet, "/api/v1/posts?role=wizard", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID, doctor, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID, farmer, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitOutcomes(t *testing.T) {
	s := newTestServer(t)
	farmer, _ := s.signup(t)

	rec := s.do(t, http.MethodPost, "/api/v1/posts", "", map[string]any{"content": "hello"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.classifier.answer = `{"relevant": false}`
	rec = s.do(t, http.MethodPost, "/api/v1/posts", farmer, map[string]any{"content": "buy cheap phones"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	s.classifier.answer = "the model is overloaded"
	rec = s.do(t, http.MethodPost, "/api/v1/posts", farmer, map[string]any{"content": "fodder prices"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, decode[map[string]any](t, rec)["retryable"].(bool))

	rec = s.do(t, http.MethodGet, "/api/v1/posts/mine", farmer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.Post](t, rec))
}

func TestWorkshopRegistrationFlow(t *testing.T) {
	s := newTestServer(t)
	farmer, doctor := s.signup(t)

	tomorrow := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
	input := map[string]any{
		"title":       "Monsoon fodder planning",
		"description": "Storing green fodder for the dry months",
		"dateFrom":    tomorrow,
		"dateTo":      tomorrow,
		"timeFrom":    "10:00",
		"timeTo":      "12:00",
		"mode":        "offline",
		"location":    "Anand dairy hall",
		"thumbnail": map[string]any{
			"kind":        "image",
			"filename":    "fodder.png",
			"contentType": "image/png",
			"data":        []byte{0x89, 0x50, 0x4e, 0x47},
		},
		"filters": []string{"fodder"},
	}

	rec := s.do(t, http.MethodPost, "/api/v1/workshops", farmer, input)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/workshops", doctor, input)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	workshop := decode[domain.Workshop](t, rec)
	assert.Equal(t, "https://media.test/fodder.png", workshop.Thumbnail)
	assert.Nil(t, workshop.Link)

	path := "/api/v1/workshops/" + workshop.ID + "/registrations"

	rec = s.do(t, http.MethodPost, path, farmer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, path, farmer, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, path, farmer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, path, doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	registrations := decode[[]domain.Registration](t, rec)
	require.Len(t, registrations, 1)
	assert.Equal(t, "farmer-1", registrations[0].UserID)

	rec = s.do(t, http.MethodGet, "/api/v1/workshops/upcoming", farmer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	upcoming := decode[[]domain.Workshop](t, rec)
	require.Len(t, upcoming, 1)
	assert.True(t, upcoming[0].CurrUserRegistered)
	assert.Empty(t, upcoming[0].Registrations)

	rec = s.do(t, http.MethodGet, "/api/v1/registrations/mine", farmer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Workshop](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/v1/workshops?tags=fodder&role=doctor", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Workshop](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/v1/workshops/mine", doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Workshop](t, rec), 1)

	rec = s.do(t, http.MethodPost, "/api/v1/workshops/missing/registrations", farmer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/workshops/"+workshop.ID, doctor, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/registrations/mine", farmer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.Workshop](t, rec))
}
