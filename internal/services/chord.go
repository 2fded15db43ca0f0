// AutoChord API [Service] implementation.
//
// Endpoint shapes follow the AutoChord backend: search and song detail are
// anonymous, analysis persistence and retrieval require a bearer token.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/chordex/internal/models"
	"github.com/desertthunder/chordex/internal/shared"
	"golang.org/x/time/rate"
)

const defaultBaseURL string = "http://localhost:5000"

// Service defines the operations the rest of the application needs from the
// AutoChord backend. Token parameters carry the bearer credential; empty means
// unauthenticated.
type Service interface {
	Name() string
	Login(ctx context.Context, email, password string) (string, models.User, error)
	Signup(ctx context.Context, email, password, nickname string) error
	Search(ctx context.Context, query, pageToken string) (*models.SearchPage, error)
	GetSongDetail(ctx context.Context, videoID string) (*models.SongDetail, error)
	Analyze(ctx context.Context, videoID string, saveToDB bool, token string) (*models.AnalysisResult, error)
	LoadSavedAnalysis(ctx context.Context, videoID, token string) (*models.AnalysisResult, error)
	CheckSavedAnalysis(ctx context.Context, videoID, token string) (bool, error)
	RequestDownload(ctx context.Context, videoURL string) (string, error)
}

// AutoChordService implements [Service] over the AutoChord HTTP API.
type AutoChordService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAutoChordService creates a new AutoChord client. requestsPerSecond bounds
// search traffic; zero or negative disables the limiter.
func NewAutoChordService(baseURL string, client *http.Client, requestsPerSecond float64) *AutoChordService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &AutoChordService{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    limiter,
	}
}

// Name returns the service name.
func (s *AutoChordService) Name() string {
	return "AutoChord"
}

func (s *AutoChordService) doRequest(ctx context.Context, method, endpoint, token string, payload, result any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
			Error  string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			if msg := errResp.Detail + errResp.Error; msg != "" {
				return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Login exchanges credentials for a bearer token and user profile.
func (s *AutoChordService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}

	if err := s.doRequest(ctx, http.MethodPost, "/auth/login", "", payload, &resp); err != nil {
		return "", models.User{}, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if resp.Token == "" {
		return "", models.User{}, fmt.Errorf("%w: empty token in response", shared.ErrAuthFailed)
	}

	return resp.Token, resp.User, nil
}

// Signup registers a new account. It does not establish a session; callers
// must log in separately.
func (s *AutoChordService) Signup(ctx context.Context, email, password, nickname string) error {
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}{email, password, nickname}

	return s.doRequest(ctx, http.MethodPost, "/auth/signup", "", payload, nil)
}

// Search returns one page of song candidates for the query. An empty pageToken
// requests the first page. Queries that are empty after trimming are rejected
// locally without a network call.
func (s *AutoChordService) Search(ctx context.Context, query, pageToken string) (*models.SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	endpoint := "/search?q=" + url.QueryEscape(query)
	if pageToken != "" {
		endpoint += "&pageToken=" + url.QueryEscape(pageToken)
	}

	var page models.SearchPage
	if err := s.doRequest(ctx, http.MethodGet, endpoint, "", nil, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// GetSongDetail fetches the base detail record for a song.
func (s *AutoChordService) GetSongDetail(ctx context.Context, videoID string) (*models.SongDetail, error) {
	if videoID == "" {
		return nil, fmt.Errorf("%w: missing video ID", shared.ErrInvalidInput)
	}

	var detail models.SongDetail
	endpoint := fmt.Sprintf("/songs/%s", url.PathEscape(videoID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, "", nil, &detail); err != nil {
		return nil, err
	}

	return &detail, nil
}

// Analyze asks the backend to run chord analysis for a song. The bearer token
// is attached when present; saveToDB asks the backend to persist the result
// against the authenticated user.
func (s *AutoChordService) Analyze(ctx context.Context, videoID string, saveToDB bool, token string) (*models.AnalysisResult, error) {
	if videoID == "" {
		return nil, fmt.Errorf("%w: missing video ID", shared.ErrInvalidInput)
	}

	payload := struct {
		VideoID  string `json:"videoId"`
		SaveToDB bool   `json:"saveToDb"`
	}{videoID, saveToDB}

	var result models.AnalysisResult
	if err := s.doRequest(ctx, http.MethodPost, "/analyze", token, payload, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAnalysisFailed, err)
	}

	return &result, nil
}

// LoadSavedAnalysis fetches a previously persisted analysis. The bearer token
// is required.
func (s *AutoChordService) LoadSavedAnalysis(ctx context.Context, videoID, token string) (*models.AnalysisResult, error) {
	if videoID == "" {
		return nil, fmt.Errorf("%w: missing video ID", shared.ErrInvalidInput)
	}
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	var result models.AnalysisResult
	endpoint := fmt.Sprintf("/analysis/%s", url.PathEscape(videoID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, token, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// CheckSavedAnalysis queries whether a persisted analysis exists for the
// authenticated user, without fetching the payload.
func (s *AutoChordService) CheckSavedAnalysis(ctx context.Context, videoID, token string) (bool, error) {
	if videoID == "" {
		return false, fmt.Errorf("%w: missing video ID", shared.ErrInvalidInput)
	}
	if token == "" {
		return false, shared.ErrNotAuthenticated
	}

	var resp struct {
		Exists bool `json:"exists"`
	}
	endpoint := fmt.Sprintf("/analysis/%s/exists", url.PathEscape(videoID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, token, nil, &resp); err != nil {
		return false, err
	}

	return resp.Exists, nil
}

// RequestDownload asks the backend to extract audio for the given video URL
// and returns the resulting media URL.
func (s *AutoChordService) RequestDownload(ctx context.Context, videoURL string) (string, error) {
	if videoURL == "" {
		return "", fmt.Errorf("%w: missing video URL", shared.ErrInvalidInput)
	}

	payload := struct {
		URL string `json:"url"`
	}{videoURL}

	var resp struct {
		URL string `json:"url"`
	}
	if err := s.doRequest(ctx, http.MethodPost, "/download", "", payload, &resp); err != nil {
		return "", err
	}

	return resp.URL, nil
}
