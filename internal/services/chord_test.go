package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/chordex/internal/models"
	"github.com/desertthunder/chordex/internal/shared"
)

func TestAutoChordService(t *testing.T) {
	ctx := context.Background()

	t.Run("New", func(t *testing.T) {
		t.Run("With Empty BaseURL", func(t *testing.T) {
			svc := NewAutoChordService("", nil, 0)
			if svc.baseURL != defaultBaseURL {
				t.Errorf("expected default baseURL, got %s", svc.baseURL)
			}
			if svc.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if svc.limiter != nil {
				t.Error("expected no limiter for zero rate")
			}
		})

		t.Run("With Rate Limit", func(t *testing.T) {
			svc := NewAutoChordService("http://example.com", nil, 2)
			if svc.limiter == nil {
				t.Error("expected a limiter")
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("Successful Exchange", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}

				var payload map[string]string
				json.NewDecoder(r.Body).Decode(&payload)
				if payload["email"] != "a@b.com" || payload["password"] != "hunter2" {
					t.Errorf("unexpected payload %v", payload)
				}

				json.NewEncoder(w).Encode(map[string]any{
					"token": "T",
					"user":  map[string]any{"id": 1, "email": "a@b.com", "nickname": "N"},
				})
			}))
			defer server.Close()

			svc := NewAutoChordService(server.URL, nil, 0)
			token, user, err := svc.Login(ctx, "a@b.com", "hunter2")

			if err != nil {
				t.Fatalf("login failed: %v", err)
			}
			if token != "T" {
				t.Errorf("expected token 'T', got %s", token)
			}
			if user.Nickname != "N" {
				t.Errorf("expected nickname 'N', got %s", user.Nickname)
			}
		})

		t.Run("Rejected Credentials", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
			}))
			defer server.Close()

			svc := NewAutoChordService(server.URL, nil, 0)
			_, _, err := svc.Login(ctx, "a@b.com", "wrong")

			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("Empty Token In Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"user": map[string]any{"id": 1}})
			}))
			defer server.Close()

			svc := NewAutoChordService(server.URL, nil, 0)
			_, _, err := svc.Login(ctx, "a@b.com", "hunter2")

			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("First Page", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("q"); got != "hotel california" {
					t.Errorf("unexpected query %q", got)
				}
				if r.URL.Query().Has("pageToken") {
					t.Error("expected no pageToken on the first page")
				}
				if r.Header.Get("Authorization") != "" {
					t.Error("expected an anonymous request")
				}

				json.NewEncoder(w).Encode(models.SearchPage{
					Items:         []models.Song{{VideoID: "abc", Title: "Hotel California"}},
					NextPageToken: "tok-2",
				})
			}))
			defer server.Close()

			svc := NewAutoChordService(server.URL, nil, 0)
			page, err := svc.Search(ctx, "hotel california", "")

			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(page.Items) != 1 || page.Items[0].VideoID != "abc" {
				t.Errorf("unexpected page %+v", page)
			}
			if !page.HasMore() {
				t.Error("expected a continuation token")
			}
		})

		t.Run("Continuation Page", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("pageToken"); got != "tok-2" {
					t.Errorf("expected pageToken 'tok-2', got %q", got)
				}
				json.NewEncoder(w).Encode(models.SearchPage{})
			}))
			defer server.Close()

			svc := NewAutoChordService(server.URL, nil, 0)
			page, err := svc.Search(ctx, "hotel california", "tok-2")

			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if page.HasMore() {
				t.Error("expected the last page")
			}
		})

		t.Run("Empty Query Rejected Locally", func(t *testing.T) {
			called := false
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))
			defer server.Close()

			svc := NewAutoChordService(server.URL, nil, 0)
			_, err := svc.Search(ctx, "  ", "")

			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if called {
				t.Error("expected no network call")
			}
		})
	})

	t.Run("GetSongDetail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/songs/abc123" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(models.SongDetail{
				Song: models.Song{VideoID: "abc123", Title: "Song", ChannelTitle: "Artist"},
			})
		}))
		defer server.Close()

		svc := NewAutoChordService(server.URL, nil, 0)
		detail, err := svc.GetSongDetail(ctx, "abc123")

		if err != nil {
			t.Fatalf("detail fetch failed: %v", err)
		}
		if detail.Title != "Song" || detail.ChannelTitle != "Artist" {
			t.Errorf("unexpected detail %+v", detail)
		}
	})

	t.Run("Analyze", func(t *testing.T) {
		t.Run("Sends Persistence Flag And Credential", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/analyze" || r.Method != http.MethodPost {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer T" {
					t.Errorf("expected bearer header, got %q", got)
				}

				var payload struct {
					VideoID  string `json:"videoId"`
					SaveToDB bool   `json:"saveToDb"`
				}
				json.NewDecoder(r.Body).Decode(&payload)
				if payload.VideoID != "abc" || !payload.SaveToDB {
					t.Errorf("unexpected payload %+v", payload)
				}

				json.NewEncoder(w).Encode(models.AnalysisResult{
					BPM: 120,
					Key: "G",
					Chords: []models.Chord{
						{Name: "G", Timestamp: 0, Duration: 2},
					},
				})
			}))
			defer server.Close()

			svc := NewAutoChordService(server.URL, nil, 0)
			result, err := svc.Analyze(ctx, "abc", true, "T")

			if err != nil {
				t.Fatalf("analyze failed: %v", err)
			}
			if result.BPM != 120 || len(result.Chords) != 1 {
				t.Errorf("unexpected result %+v", result)
			}
		})

		t.Run("Anonymous Request Omits Credential", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "" {
					t.Error("expected no bearer header")
				}
				json.NewEncoder(w).Encode(models.AnalysisResult{})
			}))
			defer server.Close()

			svc := NewAutoChordService(server.URL, nil, 0)
			if _, err := svc.Analyze(ctx, "abc", false, ""); err != nil {
				t.Fatalf("analyze failed: %v", err)
			}
		})

		t.Run("Backend Failure", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"detail": "analysis worker crashed"})
			}))
			defer server.Close()

			svc := NewAutoChordService(server.URL, nil, 0)
			_, err := svc.Analyze(ctx, "abc", false, "")

			if !errors.Is(err, shared.ErrAnalysisFailed) {
				t.Errorf("expected ErrAnalysisFailed, got %v", err)
			}
		})
	})

	t.Run("LoadSavedAnalysis", func(t *testing.T) {
		t.Run("Missing Credential Fails Fast", func(t *testing.T) {
			svc := NewAutoChordService("http://example.com", nil, 0)
			_, err := svc.LoadSavedAnalysis(ctx, "abc", "")

			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Fetches The Saved Result", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/analysis/abc" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer T" {
					t.Errorf("expected bearer header, got %q", got)
				}
				json.NewEncoder(w).Encode(models.AnalysisResult{BPM: 98})
			}))
			defer server.Close()

			svc := NewAutoChordService(server.URL, nil, 0)
			result, err := svc.LoadSavedAnalysis(ctx, "abc", "T")

			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if result.BPM != 98 {
				t.Errorf("unexpected result %+v", result)
			}
		})
	})

	t.Run("CheckSavedAnalysis", func(t *testing.T) {
		t.Run("Missing Credential Fails Fast", func(t *testing.T) {
			svc := NewAutoChordService("http://example.com", nil, 0)
			_, err := svc.CheckSavedAnalysis(ctx, "abc", "")

			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Reports Existence", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/analysis/abc/exists" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(map[string]bool{"exists": true})
			}))
			defer server.Close()

			svc := NewAutoChordService(server.URL, nil, 0)
			exists, err := svc.CheckSavedAnalysis(ctx, "abc", "T")

			if err != nil {
				t.Fatalf("check failed: %v", err)
			}
			if !exists {
				t.Error("expected exists to be true")
			}
		})
	})

	t.Run("RequestDownload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/download" || r.Method != http.MethodPost {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}

			var payload map[string]string
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["url"] != "https://www.youtube.com/watch?v=abc" {
				t.Errorf("unexpected payload %v", payload)
			}

			json.NewEncoder(w).Encode(map[string]string{"url": "https://media.example.com/abc.mp3"})
		}))
		defer server.Close()

		svc := NewAutoChordService(server.URL, nil, 0)
		mediaURL, err := svc.RequestDownload(ctx, "https://www.youtube.com/watch?v=abc")

		if err != nil {
			t.Fatalf("download request failed: %v", err)
		}
		if mediaURL != "https://media.example.com/abc.mp3" {
			t.Errorf("unexpected URL %s", mediaURL)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		svc := NewAutoChordService("http://example.com", nil, 0)

		if _, err := svc.GetSongDetail(ctx, ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for detail, got %v", err)
		}
		if _, err := svc.Analyze(ctx, "", false, ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for analyze, got %v", err)
		}
		if _, err := svc.RequestDownload(ctx, ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for download, got %v", err)
		}
	})
}
