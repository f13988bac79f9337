package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"

	"github.com/rxtnnn/harmony/internal/shared"
)

const searchBody = `{
	"tracks": {
		"total": 2,
		"items": [
			{
				"id": "abc123",
				"name": "First Song",
				"artists": [{"id": "a1", "name": "Artist One"}, {"id": "a2", "name": "Artist Two"}],
				"album": {
					"id": "al1",
					"name": "First Album",
					"images": [{"url": "https://img.example.com/al1.jpg", "height": 640, "width": 640}]
				},
				"duration_ms": 30500,
				"preview_url": "https://p.scdn.co/mp3-preview/abc123"
			},
			{
				"id": "def456",
				"name": "No Preview Song",
				"artists": [{"id": "a3", "name": "Artist Three"}],
				"album": {"id": "al2", "name": "Second Album", "images": []},
				"duration_ms": 210000,
				"preview_url": ""
			}
		]
	}
}`

// testClient points a Client at a stub API server, skipping the token flow.
func testClient(srv *httptest.Server) *Client {
	return &Client{
		httpClient: srv.Client(),
		limiter:    rate.NewLimiter(rate.Inf, 1),
		baseURL:    srv.URL,
	}
}

func TestNewClient(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		_, err := NewClient(context.Background(), shared.SpotifyConfig{})
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("err = %v, want ErrMissingConfig", err)
		}
	})

	t.Run("valid credentials", func(t *testing.T) {
		c, err := NewClient(context.Background(), shared.SpotifyConfig{
			ClientID:     "test_client_id",
			ClientSecret: "test_client_secret",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c == nil {
			t.Fatal("expected client to be created")
		}
	})
}

func TestSearchTracks(t *testing.T) {
	t.Run("maps results onto library tracks", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search" {
				t.Errorf("path = %s, want /search", r.URL.Path)
			}
			if got := r.URL.Query().Get("q"); got != "first" {
				t.Errorf("query = %q, want first", got)
			}
			if got := r.URL.Query().Get("type"); got != "track" {
				t.Errorf("type = %q, want track", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(searchBody))
		}))
		defer srv.Close()

		tracks, err := testClient(srv).SearchTracks(context.Background(), "first", 10)
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("got %d tracks, want 2", len(tracks))
		}

		first := tracks[0]
		if first.ID != "abc123" || first.SpotifyID != "abc123" {
			t.Errorf("ids = %q/%q, want abc123", first.ID, first.SpotifyID)
		}
		if first.Artist != "Artist One, Artist Two" {
			t.Errorf("artist = %q", first.Artist)
		}
		if first.Duration != 30.5 {
			t.Errorf("duration = %v, want 30.5", first.Duration)
		}
		if first.ImageURL != "https://img.example.com/al1.jpg" {
			t.Errorf("image = %q", first.ImageURL)
		}
		if !first.Playable() {
			t.Error("track with a preview should be playable")
		}

		// Preview-less results stay in the list; only playback rejects them.
		if tracks[1].Playable() {
			t.Error("track without a preview must not be playable")
		}
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("request should not reach the API")
		}))
		defer srv.Close()

		_, err := testClient(srv).SearchTracks(context.Background(), "  ", 10)
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("auth failures are distinguishable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := testClient(srv).SearchTracks(context.Background(), "first", 10)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("err = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("server errors surface as API errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := testClient(srv).SearchTracks(context.Background(), "first", 10)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("err = %v, want ErrAPIRequest", err)
		}
	})
}

func TestTrack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks/abc123" {
			t.Errorf("path = %s, want /tracks/abc123", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "abc123",
			"name": "First Song",
			"artists": [{"id": "a1", "name": "Artist One"}],
			"album": {"id": "al1", "name": "First Album", "images": []},
			"duration_ms": 30500,
			"preview_url": "https://p.scdn.co/mp3-preview/abc123"
		}`))
	}))
	defer srv.Close()

	track, err := testClient(srv).Track(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("failed to fetch track: %v", err)
	}
	if track.Title != "First Song" || track.Album != "First Album" {
		t.Errorf("track = %+v", track)
	}
}
