// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/chordex/internal/models"
)

// StubService is a configurable test double for [services.Service].
//
// Each operation returns the corresponding field and increments its call
// counter. Unset funcs return zero values.
type StubService struct {
	mu sync.Mutex

	LoginFunc    func(email, password string) (string, models.User, error)
	SignupFunc   func(email, password, nickname string) error
	SearchFunc   func(query, pageToken string) (*models.SearchPage, error)
	DetailFunc   func(videoID string) (*models.SongDetail, error)
	AnalyzeFunc  func(videoID string, saveToDB bool, token string) (*models.AnalysisResult, error)
	LoadFunc     func(videoID, token string) (*models.AnalysisResult, error)
	CheckFunc    func(videoID, token string) (bool, error)
	DownloadFunc func(videoURL string) (string, error)

	SearchCalls   int
	AnalyzeCalls  int
	CheckCalls    int
	LoadCalls     int
	DownloadCalls int
}

func (s *StubService) Name() string { return "stub" }

func (s *StubService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	if s.LoginFunc != nil {
		return s.LoginFunc(email, password)
	}
	return "", models.User{}, errors.New("login not stubbed")
}

func (s *StubService) Signup(ctx context.Context, email, password, nickname string) error {
	if s.SignupFunc != nil {
		return s.SignupFunc(email, password, nickname)
	}
	return nil
}

func (s *StubService) Search(ctx context.Context, query, pageToken string) (*models.SearchPage, error) {
	s.mu.Lock()
	s.SearchCalls++
	s.mu.Unlock()
	if s.SearchFunc != nil {
		return s.SearchFunc(query, pageToken)
	}
	return &models.SearchPage{}, nil
}

func (s *StubService) GetSongDetail(ctx context.Context, videoID string) (*models.SongDetail, error) {
	if s.DetailFunc != nil {
		return s.DetailFunc(videoID)
	}
	return &models.SongDetail{Song: models.Song{VideoID: videoID}}, nil
}

func (s *StubService) Analyze(ctx context.Context, videoID string, saveToDB bool, token string) (*models.AnalysisResult, error) {
	s.mu.Lock()
	s.AnalyzeCalls++
	s.mu.Unlock()
	if s.AnalyzeFunc != nil {
		return s.AnalyzeFunc(videoID, saveToDB, token)
	}
	return &models.AnalysisResult{}, nil
}

func (s *StubService) LoadSavedAnalysis(ctx context.Context, videoID, token string) (*models.AnalysisResult, error) {
	s.mu.Lock()
	s.LoadCalls++
	s.mu.Unlock()
	if s.LoadFunc != nil {
		return s.LoadFunc(videoID, token)
	}
	return &models.AnalysisResult{}, nil
}

func (s *StubService) CheckSavedAnalysis(ctx context.Context, videoID, token string) (bool, error) {
	s.mu.Lock()
	s.CheckCalls++
	s.mu.Unlock()
	if s.CheckFunc != nil {
		return s.CheckFunc(videoID, token)
	}
	return false, nil
}

func (s *StubService) RequestDownload(ctx context.Context, videoURL string) (string, error) {
	s.mu.Lock()
	s.DownloadCalls++
	s.mu.Unlock()
	if s.DownloadFunc != nil {
		return s.DownloadFunc(videoURL)
	}
	return "", nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading a response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
