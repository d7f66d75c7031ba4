// Package omdb looks up movie metadata from the OMDb API.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/CoolCoder0110/Movie-API/pkg/models"
)

// ErrLookup reports that a lookup could not produce a result: a
// network failure, an unexpected status, or a malformed body. Callers
// skip the item; this error never fails an enclosing read.
var ErrLookup = errors.New("movie lookup failed")

// Client performs one synchronous lookup per imdb id against OMDb.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an OMDb client. A nil httpClient falls back to
// http.DefaultClient.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, httpClient: httpClient}
}

// omdbResponse is the subset of the provider payload we read.
type omdbResponse struct {
	Title string `json:"Title"`
	Year  string `json:"Year"`
}

// Lookup resolves one imdb id. A provider 200 maps Title/Year onto an
// EnrichedMovie (absent fields become empty strings); a provider 404
// returns the not-found sentinel record, which is a valid result; any
// other outcome wraps ErrLookup.
func (c *Client) Lookup(ctx context.Context, imdbID string) (models.EnrichedMovie, error) {
	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.EnrichedMovie{}, fmt.Errorf("%w: %v", ErrLookup, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.EnrichedMovie{}, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return models.EnrichedMovie{}, fmt.Errorf("%w: read body: %v", ErrLookup, err)
		}
		var data omdbResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return models.EnrichedMovie{}, fmt.Errorf("%w: decode body: %v", ErrLookup, err)
		}
		return models.EnrichedMovie{IMDBID: imdbID, Title: data.Title, Year: data.Year}, nil
	case http.StatusNotFound:
		return models.NotFoundMovie(imdbID), nil
	default:
		return models.EnrichedMovie{}, fmt.Errorf("%w: unexpected status %d", ErrLookup, resp.StatusCode)
	}
}
