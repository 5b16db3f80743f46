// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/spotx/internal/models"
)

// MockClient is a test double for services.Client backed by in-memory fixtures.
//
// Reads page through the fixture slices honoring limit/offset; writes are
// recorded for assertions. Error fields make the corresponding call fail.
type MockClient struct {
	mu sync.Mutex

	User           *models.User
	Saved          []models.SavedTrack
	PlaylistList   []models.Playlist
	PlaylistTracks map[string][]models.SavedTrack

	MeErr            error
	SavedErr         error
	PlaylistsErr     error
	PlaylistItemsErr error
	SaveErr          error
	CreateErr        error
	AddErr           error

	SaveCalls   [][]string
	CreateCalls []models.Playlist
	AddCalls    map[string][][]string
}

// NewMockClient creates a MockClient with an authenticated test user.
func NewMockClient() *MockClient {
	return &MockClient{
		User:          &models.User{ID: "user-1", DisplayName: "Test User"},
		PlaylistTracks: map[string][]models.SavedTrack{},
		AddCalls:       map[string][][]string{},
	}
}

func (m *MockClient) Me(ctx context.Context) (*models.User, error) {
	if m.MeErr != nil {
		return nil, m.MeErr
	}
	return m.User, nil
}

func pageOf[T any](items []T, limit, offset int) *models.Page[T] {
	if offset >= len(items) {
		return &models.Page[T]{Items: []T{}, Total: len(items), Limit: limit, Offset: offset}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return &models.Page[T]{
		Items:  items[offset:end],
		Total:  len(items),
		Limit:  limit,
		Offset: offset,
		Next:   end < len(items),
	}
}

func (m *MockClient) SavedTracks(ctx context.Context, limit, offset int) (*models.Page[models.SavedTrack], error) {
	if m.SavedErr != nil {
		return nil, m.SavedErr
	}
	return pageOf(m.Saved, limit, offset), nil
}

func (m *MockClient) Playlists(ctx context.Context, limit, offset int) (*models.Page[models.Playlist], error) {
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	return pageOf(m.PlaylistList, limit, offset), nil
}

func (m *MockClient) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*models.Page[models.SavedTrack], error) {
	if m.PlaylistItemsErr != nil {
		return nil, m.PlaylistItemsErr
	}
	return pageOf(m.PlaylistTracks[playlistID], limit, offset), nil
}

func (m *MockClient) SaveTracks(ctx context.Context, ids []string) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls = append(m.SaveCalls, ids)
	return nil
}

func (m *MockClient) CreatePlaylist(ctx context.Context, userID, name string, public bool, description string) (*models.Playlist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	created := models.Playlist{
		ID:          fmt.Sprintf("created-%d", len(m.CreateCalls)),
		Name:        name,
		Description: description,
		Public:      public,
		OwnerID:     userID,
	}
	m.CreateCalls = append(m.CreateCalls, created)
	return &created, nil
}

func (m *MockClient) AddPlaylistItems(ctx context.Context, playlistID string, ids []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls[playlistID] = append(m.AddCalls[playlistID], ids)
	return nil
}

func (m *MockClient) Name() string { return "mock" }

// TrackFixtures generates n transferable saved tracks.
func TrackFixtures(n int) []models.SavedTrack {
	tracks := make([]models.SavedTrack, n)
	for i := range tracks {
		tracks[i] = models.SavedTrack{Track: models.Track{
			ID:    fmt.Sprintf("track-%03d", i),
			Title: fmt.Sprintf("Track %d", i),
		}}
	}
	return tracks
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
