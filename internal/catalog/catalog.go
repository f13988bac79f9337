// Package catalog looks up streamable tracks in the Spotify catalog.
//
// Search results map onto [models.Track]; tracks without a preview stream
// are kept, the playback controller rejects them only when asked to play.
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/rxtnnn/harmony/internal/models"
	"github.com/rxtnnn/harmony/internal/shared"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// defaultRateLimit caps catalog requests per second.
	defaultRateLimit = 5
)

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

type spotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []spotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	PreviewURL string          `json:"preview_url"`
	URI        string          `json:"uri"`
}

type searchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// Client queries the catalog with app-level credentials. The
// client-credentials grant suffices because no user data is touched.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewClient creates a catalog client from the configured credentials.
func NewClient(ctx context.Context, creds shared.SpotifyConfig) (*Client, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingConfig)
	}

	cfg := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &Client{
		httpClient: cfg.Client(ctx),
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
		baseURL:    spotifyBaseURL,
	}, nil
}

// doRequest performs a rate-limited GET against the catalog API.
func (c *Client) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status %d", shared.ErrNotAuthenticated, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// SearchTracks runs a track search and returns up to limit results.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrValidation)
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))

	var resp searchResponse
	if err := c.doRequest(ctx, "/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
		tracks = append(tracks, toTrack(item))
	}
	return tracks, nil
}

// Track fetches a single catalog track by its Spotify ID.
func (c *Client) Track(ctx context.Context, id string) (models.Track, error) {
	if strings.TrimSpace(id) == "" {
		return models.Track{}, fmt.Errorf("%w: empty track id", shared.ErrValidation)
	}

	var item spotifyTrack
	if err := c.doRequest(ctx, "/tracks/"+url.PathEscape(id), &item); err != nil {
		return models.Track{}, err
	}
	return toTrack(item), nil
}

func toTrack(item spotifyTrack) models.Track {
	t := models.Track{
		ID:         item.ID,
		Title:      item.Name,
		Duration:   float64(item.DurationMS) / 1000,
		PreviewURL: item.PreviewURL,
		SpotifyID:  item.ID,
	}

	names := make([]string, 0, len(item.Artists))
	for _, a := range item.Artists {
		names = append(names, a.Name)
	}
	t.Artist = strings.Join(names, ", ")
	t.Album = item.Album.Name
	if len(item.Album.Images) > 0 {
		t.ImageURL = item.Album.Images[0].URL
	}
	return t
}
