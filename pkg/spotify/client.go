package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ophiuchus-be/internal/entity"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/oauth2/clientcredentials"
)

const apiBaseURL = "https://api.spotify.com/v1"

// Catalog is the seam the game services depend on; the Spotify client
// is its production implementation.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]entity.Song, error)
	GetTrack(ctx context.Context, id string) (*entity.Song, error)
}

// Client talks to the Spotify Web API using the client-credentials
// grant (catalog-only access, no user authorization). Search responses
// are cached briefly since quest creation hits the same seed queries
// repeatedly.
type Client struct {
	http    *http.Client
	baseURL string
	cache   *gocache.Cache
}

var _ Catalog = &Client{}

func NewClient(clientID, clientSecret string) *Client {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     "https://accounts.spotify.com/api/token",
	}

	return &Client{
		http:    cfg.Client(context.Background()),
		baseURL: apiBaseURL,
		cache:   gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// --- Spotify wire format (only the fields we read) ---

type trackObject struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			Url string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	ExternalUrls struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type searchResponse struct {
	Tracks struct {
		Items []trackObject `json:"items"`
	} `json:"tracks"`
}

func (t trackObject) toSong() entity.Song {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}
	imageUrl := ""
	if len(t.Album.Images) > 0 {
		imageUrl = t.Album.Images[0].Url
	}
	return entity.Song{
		Id:          t.Id,
		Name:        t.Name,
		Artists:     artists,
		Album:       t.Album.Name,
		ImageUrl:    imageUrl,
		ExternalUrl: t.ExternalUrls.Spotify,
	}
}

func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]entity.Song, error) {
	cacheKey := fmt.Sprintf("search:%s:%d", query, limit)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]entity.Song), nil
	}

	u := fmt.Sprintf("%s/search?type=track&limit=%d&q=%s", c.baseURL, limit, url.QueryEscape(query))
	var res searchResponse
	if err := c.getJSON(ctx, u, &res); err != nil {
		return nil, err
	}

	songs := make([]entity.Song, len(res.Tracks.Items))
	for i, item := range res.Tracks.Items {
		songs[i] = item.toSong()
	}

	c.cache.Set(cacheKey, songs, gocache.DefaultExpiration)
	return songs, nil
}

func (c *Client) GetTrack(ctx context.Context, id string) (*entity.Song, error) {
	cacheKey := "track:" + id
	if cached, found := c.cache.Get(cacheKey); found {
		song := cached.(entity.Song)
		return &song, nil
	}

	var track trackObject
	if err := c.getJSON(ctx, fmt.Sprintf("%s/tracks/%s", c.baseURL, id), &track); err != nil {
		return nil, err
	}

	song := track.toSong()
	c.cache.Set(cacheKey, song, gocache.DefaultExpiration)
	return &song, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("spotify request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
