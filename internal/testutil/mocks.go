package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pratik-mahalle/upscaler/internal/domain/image"
	"github.com/pratik-mahalle/upscaler/internal/domain/profile"
	"github.com/pratik-mahalle/upscaler/internal/domain/user"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*user.User
	EmailIndex  map[string]*user.User
	CreateError error
	GetError    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:      make(map[string]*user.User),
		EmailIndex: make(map[string]*user.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, ok := m.EmailIndex[u.Email]; ok {
		return errors.Conflict("An account with this email already exists")
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.Users[u.ID] = u
	m.EmailIndex[u.Email] = u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, errors.NotFound("User")
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.EmailIndex[email]
	if !ok {
		return nil, errors.NotFound("User")
	}
	return u, nil
}

// MockProfileRepository is a mock implementation of profile.Repository
type MockProfileRepository struct {
	mu          sync.Mutex
	Profiles    map[string]*profile.Profile
	CreateError error
	GetError    error
	DeductError error
	DeductCalls int
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		Profiles: make(map[string]*profile.Profile),
	}
}

// Seed adds a profile directly
func (m *MockProfileRepository) Seed(id string, credits int64, premium bool) *profile.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &profile.Profile{ID: id, Credits: credits, IsPremium: premium, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.Profiles[id] = p
	return p
}

func (m *MockProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, ok := m.Profiles[p.ID]; ok {
		return errors.Conflict("Profile already exists")
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.Profiles[p.ID] = p
	return nil
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	p, ok := m.Profiles[id]
	if !ok {
		return nil, errors.NotFound("User profile")
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfileRepository) DeductCredits(ctx context.Context, id string, amount int64) (int64, int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeductCalls++
	if m.DeductError != nil {
		return 0, 0, false, m.DeductError
	}
	p, ok := m.Profiles[id]
	if !ok || p.IsPremium || p.Credits < amount {
		return 0, 0, false, nil
	}
	p.Credits -= amount
	p.TotalUpscales++
	p.UpdatedAt = time.Now()
	return p.Credits, p.TotalUpscales, true, nil
}

func (m *MockProfileRepository) Stats(ctx context.Context) (*profile.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s profile.Stats
	for _, p := range m.Profiles {
		s.Profiles++
		if p.IsPremium {
			s.PremiumProfiles++
		} else {
			s.CreditsOutstanding += p.Credits
		}
	}
	return &s, nil
}

// MockImageRepository is a mock implementation of image.Repository
type MockImageRepository struct {
	mu          sync.Mutex
	Images      []*image.Image
	CreateError error
	ListError   error
}

func NewMockImageRepository() *MockImageRepository {
	return &MockImageRepository{}
}

func (m *MockImageRepository) Create(ctx context.Context, img *image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	if img.ID == "" {
		img.ID = uuid.New().String()
	}
	img.CreatedAt = time.Now().Add(time.Duration(len(m.Images)) * time.Millisecond)
	m.Images = append(m.Images, img)
	return nil
}

func (m *MockImageRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*image.Image, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, 0, m.ListError
	}
	var mine []*image.Image
	for _, img := range m.Images {
		if img.UserID == userID {
			mine = append(mine, img)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	total := int64(len(mine))
	if offset >= len(mine) {
		return []*image.Image{}, total, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], total, nil
}

func (m *MockImageRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.Images)), nil
}

// MockUpstream is a mock implementation of upscale.Upstream
type MockUpstream struct {
	mu        sync.Mutex
	Key       string
	Response  []byte
	Err       error
	Calls     int
	LastImage []byte
	LastSize  [2]int
}

func (m *MockUpstream) Configured() bool { return m.Key != "" }

func (m *MockUpstream) Upscale(ctx context.Context, img []byte, width, height int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastImage = img
	m.LastSize = [2]int{width, height}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// CallCount returns the number of upstream calls so far
func (m *MockUpstream) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// LastTarget returns the width and height of the most recent call
func (m *MockUpstream) LastTarget() [2]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastSize
}

// MockFetcher is a mock remote image fetcher
type MockFetcher struct {
	Body []byte
	Err  error
	URLs []string
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	m.URLs = append(m.URLs, rawURL)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Body, nil
}

// MockStore is an in-memory storage.Store
type MockStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
	PutErr  error
}

func NewMockStore() *MockStore {
	return &MockStore{Objects: make(map[string][]byte), Types: make(map[string]string)}
}

func (m *MockStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return "", m.PutErr
	}
	m.Objects[key] = data
	m.Types[key] = contentType
	return fmt.Sprintf("https://blobs.test/%s", key), nil
}

func (m *MockStore) Name() string { return "mock" }

func (m *MockStore) Close() error { return nil }
