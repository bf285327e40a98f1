package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
)

// --- mocks ---

type mockClassifier struct {
	answers []string
	err     error
	calls   int
	prompts []string
	media   []*domain.EncodedMedia
}

func (m *mockClassifier) Generate(ctx context.Context, prompt string, media *domain.EncodedMedia) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.media = append(m.media, media)
	if m.err != nil {
		return "", m.err
	}
	if len(m.answers) == 0 {
		return "", nil
	}
	a := m.answers[0]
	m.answers = m.answers[1:]
	return a, nil
}

type mockStorage struct {
	err   error
	calls int
}

func (m *mockStorage) Upload(ctx context.Context, file domain.MediaPayload) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "https://media.example/" + file.Filename, nil
}

type mockRoles struct {
	roles map[string]gaushala.Role
	err   error
}

func (m *mockRoles) RoleFor(ctx context.Context, userID string, collection gaushala.Collection) (gaushala.Role, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	r, ok := m.roles[userID]
	return r, ok, nil
}

type mockPublisher struct {
	events []gaushala.Event
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event gaushala.Event) error {
	m.events = append(m.events, event)
	return nil
}

type mockProfileRepo struct {
	profiles    map[string]domain.Profile
	owners      map[string]*domain.IDSet
	registrants map[string]*domain.IDSet
	upserted    []domain.Profile
}

func newMockProfileRepo(profiles ...domain.Profile) *mockProfileRepo {
	m := &mockProfileRepo{
		profiles:    map[string]domain.Profile{},
		owners:      map[string]*domain.IDSet{},
		registrants: map[string]*domain.IDSet{},
	}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockProfileRepo) Get(ctx context.Context, userID string, collection gaushala.Collection) (domain.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok || p.Collection != collection {
		return domain.Profile{}, domain.NotFoundError{Resource: "profile"}
	}
	return p, nil
}

func (m *mockProfileRepo) Upsert(ctx context.Context, profile domain.Profile) error {
	m.profiles[profile.ID] = profile
	m.upserted = append(m.upserted, profile)
	return nil
}

func (m *mockProfileRepo) OwnerIndex(ctx context.Context, ownerID, kind string) (*domain.IDSet, error) {
	if s, ok := m.owners[ownerID+"/"+kind]; ok {
		return s, nil
	}
	return domain.NewIDSet(), nil
}

func (m *mockProfileRepo) RegistrantIndex(ctx context.Context, userID string) (*domain.IDSet, error) {
	if s, ok := m.registrants[userID]; ok {
		return s, nil
	}
	return domain.NewIDSet(), nil
}

func (m *mockProfileRepo) index(set map[string]*domain.IDSet, key string) *domain.IDSet {
	s, ok := set[key]
	if !ok {
		s = domain.NewIDSet()
		set[key] = s
	}
	return s
}

type mockPostRepo struct {
	mu       sync.Mutex
	posts    map[string]domain.Post
	profiles *mockProfileRepo
	creates  int
	updates  int
	err      error
}

func newMockPostRepo(profiles *mockProfileRepo) *mockPostRepo {
	return &mockPostRepo{posts: map[string]domain.Post{}, profiles: profiles}
}

func (m *mockPostRepo) Create(ctx context.Context, post domain.Post) (domain.Post, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Post{}, false, m.err
	}
	for _, p := range m.posts {
		if p.OwnerID == post.OwnerID && p.ContentHash == post.ContentHash {
			return p, false, nil
		}
	}
	m.creates++
	m.posts[post.ID] = post
	if m.profiles != nil {
		m.profiles.index(m.profiles.owners, post.OwnerID+"/"+domain.IndexKindPost).Add(post.ID)
	}
	return post, true, nil
}

func (m *mockPostRepo) FindByContentHash(ctx context.Context, ownerID, hash string) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.OwnerID == ownerID && p.ContentHash == hash {
			return p, nil
		}
	}
	return domain.Post{}, domain.NotFoundError{Resource: "post"}
}

func (m *mockPostRepo) Get(ctx context.Context, id string) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return domain.Post{}, domain.NotFoundError{Resource: "post"}
	}
	return p, nil
}

func (m *mockPostRepo) List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Post{}
	for _, p := range m.posts {
		if filter.OwnerRole != "" && p.OwnerRole != filter.OwnerRole {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockPostRepo) UpdateContent(ctx context.Context, post domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	m.posts[post.ID] = post
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return domain.NotFoundError{Resource: "post"}
	}
	delete(m.posts, id)
	if m.profiles != nil {
		m.profiles.index(m.profiles.owners, p.OwnerID+"/"+domain.IndexKindPost).Remove(id)
	}
	return nil
}

func (m *mockPostRepo) Attest(ctx context.Context, postID string, attestation domain.Attestation) ([]domain.Attestation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil, false, domain.NotFoundError{Resource: "post"}
	}
	if p.HasAttestation(attestation.AttesterID) {
		return p.Attestations, false, nil
	}
	p.Attestations = append(p.Attestations, attestation)
	p.VerificationState = domain.Verified
	m.posts[postID] = p
	return p.Attestations, true, nil
}

type mockWorkshopRepo struct {
	mu        sync.Mutex
	workshops map[string]domain.Workshop
	profiles  *mockProfileRepo
	created   []domain.Workshop
	from      time.Time
}

func newMockWorkshopRepo(profiles *mockProfileRepo) *mockWorkshopRepo {
	return &mockWorkshopRepo{workshops: map[string]domain.Workshop{}, profiles: profiles}
}

func (m *mockWorkshopRepo) Create(ctx context.Context, w domain.Workshop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workshops[w.ID] = w
	m.created = append(m.created, w)
	m.profiles.index(m.profiles.owners, w.OwnerID+"/"+domain.IndexKindWorkshop).Add(w.ID)
	return nil
}

func (m *mockWorkshopRepo) Get(ctx context.Context, id string) (domain.Workshop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workshops[id]
	if !ok {
		return domain.Workshop{}, domain.NotFoundError{Resource: "workshop"}
	}
	w.Registrations = append([]domain.Registration{}, w.Registrations...)
	return w, nil
}

func (m *mockWorkshopRepo) ListUpcoming(ctx context.Context, from time.Time) ([]domain.Workshop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.from = from
	out := []domain.Workshop{}
	for _, w := range m.workshops {
		if !w.DateFrom.Before(from) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateFrom.Before(out[j].DateFrom) })
	return out, nil
}

func (m *mockWorkshopRepo) List(ctx context.Context, filter domain.WorkshopFilter) ([]domain.Workshop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Workshop{}
	for _, w := range m.workshops {
		out = append(out, w)
	}
	return out, nil
}

// Register follows the same check order as the database implementation.
func (m *mockWorkshopRepo) Register(ctx context.Context, workshopID, userID string, collection gaushala.Collection) (domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles.profiles[userID]
	if !ok || profile.Collection != collection {
		return domain.Registration{}, domain.NotFoundError{Resource: "profile"}
	}
	w, ok := m.workshops[workshopID]
	if !ok {
		return domain.Registration{}, domain.NotFoundError{Resource: "workshop"}
	}
	if w.IsRegistered(userID) {
		return domain.Registration{}, domain.ErrAlreadyRegistered
	}
	reg := domain.Registration{UserID: userID, Name: profile.Name, ContactNo: profile.ContactNo, Role: profile.Role}
	w.Registrations = append(w.Registrations, reg)
	m.workshops[workshopID] = w
	m.profiles.index(m.profiles.registrants, userID).Add(workshopID)
	return reg, nil
}

func (m *mockWorkshopRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workshops[id]
	if !ok {
		return domain.NotFoundError{Resource: "workshop"}
	}
	delete(m.workshops, id)
	m.profiles.index(m.profiles.owners, w.OwnerID+"/"+domain.IndexKindWorkshop).Remove(id)
	for _, r := range w.Registrations {
		m.profiles.index(m.profiles.registrants, r.UserID).Remove(id)
	}
	return nil
}

var errBoom = errors.New("boom")

// --- fixtures ---

var (
	farmer = domain.Profile{
		ID:         "farmer-1",
		Collection: gaushala.CollectionFarmers,
		Role:       gaushala.RoleFarmer,
		Name:       "Ramesh",
		ContactNo:  "9000000001",
		Details:    gaushala.FarmerDetails{},
	}
	doctor = domain.Profile{
		ID:         "doctor-1",
		Collection: gaushala.CollectionExperts,
		Role:       gaushala.RoleDoctor,
		Name:       "Anita Rao",
		ContactNo:  "9000000002",
		ProfilePic: "https://media.example/anita.png",
		Details:    gaushala.DoctorDetails{UniqueID: 42, Education: "BVSc", YearsOfPractice: 8, State: "Gujarat", City: "Anand"},
	}
	volunteer = domain.Profile{
		ID:         "volunteer-1",
		Collection: gaushala.CollectionExperts,
		Role:       gaushala.RoleVolunteer,
		Name:       "Kiran",
		ContactNo:  "9000000003",
		Details:    gaushala.VolunteerDetails{Education: "BA", State: "Punjab", City: "Ludhiana"},
	}
)

func identityOf(p domain.Profile) domain.Identity {
	return domain.Identity{UserID: p.ID, Collection: p.Collection}
}
