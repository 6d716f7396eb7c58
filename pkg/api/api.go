// Package api provides the wire types of the fuelfinder HTTP API and a
// client to query a running server for ranked nearby fuel stations.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTimeout = 30 * time.Second
	FuelTypeAll    = "all"
)

// Client talks to a fuelfinder server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// StationsQuery holds the parameters of a ranked station listing.
type StationsQuery struct {
	FuelType string
	Sort     string
	Lat, Lng *float64
	Location string
	// RadiusKm sets the search radius of the session, zero for none.
	// nil keeps the current one.
	RadiusKm *float64
	Language string
}

func (q StationsQuery) values() url.Values {
	v := url.Values{}
	if q.FuelType != "" {
		v.Set("fuel", q.FuelType)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Lat != nil && q.Lng != nil {
		v.Set("lat", strconv.FormatFloat(*q.Lat, 'f', -1, 64))
		v.Set("lng", strconv.FormatFloat(*q.Lng, 'f', -1, 64))
	}
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if q.RadiusKm != nil {
		v.Set("radius", strconv.FormatFloat(*q.RadiusKm, 'f', -1, 64))
	}
	if q.Language != "" {
		v.Set("lang", q.Language)
	}
	return v
}

// Token returns the session token of the last successful login or signup.
func (c *Client) Token() string {
	return c.token
}

// SetToken reuses an existing session token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login starts a session and remembers its token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// Signup registers a user, starts a session and remembers its token.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// Logout ends the current session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Stations returns the ranked station list for the session.
func (c *Client) Stations(ctx context.Context, q StationsQuery) (*StationList, error) {
	path := "/api/stations"
	if v := q.values(); len(v) > 0 {
		path += "?" + v.Encode()
	}

	var list StationList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Select makes stationID the shared selection, as seen from surface.
func (c *Client) Select(ctx context.Context, stationID, surface string) (*SessionInfo, error) {
	var info SessionInfo
	req := SelectionRequest{StationID: stationID, Surface: surface}
	if err := c.do(ctx, http.MethodPut, "/api/session/selection", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ClearSelection clears the shared selection.
func (c *Client) ClearSelection(ctx context.Context, surface string) (*SessionInfo, error) {
	path := "/api/session/selection"
	if surface != "" {
		path += "?surface=" + url.QueryEscape(surface)
	}
	var info SessionInfo
	if err := c.do(ctx, http.MethodDelete, path, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Session returns the state of the current session.
func (c *Client) Session(ctx context.Context) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SetLanguage changes the session language.
func (c *Client) SetLanguage(ctx context.Context, lang string) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.do(ctx, http.MethodPut, "/api/session/language", LanguageRequest{Language: lang}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SetLocation moves the reference point of the session.
func (c *Client) SetLocation(ctx context.Context, req LocationRequest) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.do(ctx, http.MethodPut, "/api/session/location", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Station returns one station, with its distance when the session has
// a reference point.
func (c *Client) Station(ctx context.Context, id string) (*RankedStation, error) {
	var st RankedStation
	if err := c.do(ctx, http.MethodGet, "/api/stations/"+url.PathEscape(id), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Reviews lists the reviews of a station.
func (c *Client) Reviews(ctx context.Context, stationID string) (*ReviewList, error) {
	var list ReviewList
	if err := c.do(ctx, http.MethodGet, "/api/stations/"+url.PathEscape(stationID)+"/reviews", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AddReview posts a review for a station.
func (c *Client) AddReview(ctx context.Context, stationID string, review NewReview) (*Review, error) {
	var created Review
	if err := c.do(ctx, http.MethodPost, "/api/stations/"+url.PathEscape(stationID)+"/reviews", review, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error fetching data: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return &Error{StatusCode: resp.StatusCode, Message: apiErr.Message}
		}
		return &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error unmarshaling JSON: %w", err)
	}
	return nil
}

// Error is returned for non-2xx responses.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Message)
}
