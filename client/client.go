// Package client provides a thin SDK to talk to the listings server, plus a
// feed view-model that keeps optimistic like state in sync with the backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Session identifies the logged in user. It is produced by the external
// identity provider and only read here, never mutated. Operations that
// require a session take it as an explicit argument.
type Session struct {
	// UserID is the username of the logged in user.
	UserID string
	// DisplayName is the user's profile name.
	DisplayName string
	// Token is the raw JWT used as Bearer token.
	Token string
}

// Listing mirrors the server's listing representation.
type Listing struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Title       string    `json:"title"`
	Price       string    `json:"price"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image"`
	Rating      int       `json:"rating"`
	Likes       int       `json:"likes,omitempty"`
	PostedBy    string    `json:"postedby"`
	PostedDate  string    `json:"posteddate"`
	Owner       string    `json:"owner,omitempty"`
	Categories  []struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"categories,omitempty"`
	// IsLiked is only meaningful on responses to authenticated requests.
	IsLiked bool `json:"is_liked,omitempty"`
}

// CreateListing holds the fields needed to post a new listing.
type CreateListing struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image"`
	Rating      int    `json:"rating"`
	Categories  string `json:"categories,omitempty"`
}

// ValidationError reports missing or invalid fields, detected before any
// remote call is attempted.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid listing fields: " + strings.Join(e.Fields, ", ")
}

// NotFoundError reports that the requested entity does not exist. This is an
// expected outcome (eg. a stale link), not a fatal error.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("listing %q not found", e.ID)
}

// PermissionError reports a request that the server rejected for lack of a
// valid session or ownership.
type PermissionError struct {
	Op string
}

func (e *PermissionError) Error() string {
	return "permission denied: " + e.Op
}

// RemoteError wraps any other backend or network failure, undifferentiated
// by subtype.
type RemoteError struct {
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote error: %v", e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Client is a thin HTTP client for the listings server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client that talks to the server at the given base URL,
// eg. "https://api.homefeed.app/1.0".
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// do issues a request and decodes the JSON response into out (if not nil).
// Non-2xx responses are mapped to the error taxonomy.
func (c *Client) do(ctx context.Context, s *Session, method, path string,
	body, out interface{}) error {

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &RemoteError{Err: errors.Wrap(err, "encoding request body")}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &RemoteError{Err: errors.Wrap(err, "creating request")}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil && s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Err: errors.Wrapf(err, "%s %s", method, path)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{ID: path}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &PermissionError{Op: method + " " + path}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(resp.Body)
		return &RemoteError{
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("%s %s: %s", method, path, strings.TrimSpace(string(b))),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &RemoteError{Err: errors.Wrap(err, "decoding response body")}
		}
	}
	return nil
}

// validateCreateListing is the client-side gate: it fails before any remote
// call is attempted.
func validateCreateListing(in CreateListing) error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Price) == "" {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(in.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(in.Image) == "" {
		missing = append(missing, "image")
	}
	if in.Rating < 1 || in.Rating > 5 {
		missing = append(missing, "rating")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Create posts a new listing. Mandatory fields are validated locally first;
// a ValidationError is returned without any network traffic.
func (c *Client) Create(ctx context.Context, s *Session, in CreateListing) (*Listing, error) {
	if err := validateCreateListing(in); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, &PermissionError{Op: "create listing"}
	}
	var listing Listing
	if err := c.do(ctx, s, http.MethodPost, "/listings", in, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// List returns all listings, newest first. The session is optional; when
// present, the IsLiked field of each listing is resolved for that user.
// An empty store yields an empty slice, not an error.
func (c *Client) List(ctx context.Context, s *Session) ([]Listing, error) {
	var list []Listing
	if err := c.do(ctx, s, http.MethodGet, "/listings", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get fetches a single listing by its id. A missing listing is reported as
// NotFoundError.
func (c *Client) Get(ctx context.Context, s *Session, id string) (*Listing, error) {
	var listing Listing
	if err := c.do(ctx, s, http.MethodGet, "/listings/"+id, nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Delete removes a listing. Only the owner (or a system admin) can do this.
func (c *Client) Delete(ctx context.Context, s *Session, id string) error {
	if s == nil {
		return &PermissionError{Op: "delete listing"}
	}
	return c.do(ctx, s, http.MethodDelete, "/listings/"+id, nil, nil)
}

// Like likes a listing on behalf of the session user and returns the updated
// like count. Liking an already liked listing is not an error.
func (c *Client) Like(ctx context.Context, s *Session, id string) (int, error) {
	return c.sendLike(ctx, s, http.MethodPost, id)
}

// Unlike removes the session user's like from a listing and returns the
// updated like count. Unliking a listing that was not liked is not an error.
func (c *Client) Unlike(ctx context.Context, s *Session, id string) (int, error) {
	return c.sendLike(ctx, s, http.MethodDelete, id)
}

// sendLike posts or deletes a like. The server replies with the like counter
// as plain text.
func (c *Client) sendLike(ctx context.Context, s *Session, method, id string) (int, error) {
	if s == nil {
		return 0, &PermissionError{Op: "like listing"}
	}

	path := "/listings/" + id + "/likes"
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return 0, &RemoteError{Err: errors.Wrap(err, "creating request")}
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &RemoteError{Err: errors.Wrapf(err, "%s %s", method, path)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, &NotFoundError{ID: id}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return 0, &PermissionError{Op: method + " " + path}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(resp.Body)
		return 0, &RemoteError{
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("%s %s: %s", method, path, strings.TrimSpace(string(b))),
		}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &RemoteError{Err: errors.Wrap(err, "reading like count")}
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, &RemoteError{Err: errors.Wrap(err, "parsing like count")}
	}
	return count, nil
}

// IsLiked reports whether the session user liked the given listing. A nil
// session short-circuits to false without a remote call.
func (c *Client) IsLiked(ctx context.Context, s *Session, id string) (bool, error) {
	if s == nil {
		return false, nil
	}
	listing, err := c.Get(ctx, s, id)
	if err != nil {
		return false, err
	}
	return listing.IsLiked, nil
}

// Toggle reads the current like state and performs the inverse operation.
// It returns the new state. Toggling without a session is a silent no-op.
// Note: the toggle is not atomic end-to-end. Convergence under concurrent
// toggles relies on the server collapsing duplicate likes and treating
// absent-like deletes as no-ops.
func (c *Client) Toggle(ctx context.Context, s *Session, id string) (bool, error) {
	if s == nil {
		return false, nil
	}
	liked, err := c.IsLiked(ctx, s, id)
	if err != nil {
		return false, err
	}
	if liked {
		if _, err := c.Unlike(ctx, s, id); err != nil {
			return liked, err
		}
		return false, nil
	}
	if _, err := c.Like(ctx, s, id); err != nil {
		return liked, err
	}
	return true, nil
}

// LikedListings returns the listings liked by the given user, newest first.
// Likes whose backing listing was removed are never included.
func (c *Client) LikedListings(ctx context.Context, s *Session, username string) ([]Listing, error) {
	var list []Listing
	if err := c.do(ctx, s, http.MethodGet, "/"+username+"/likes/listings", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// OwnerListings returns the listings posted by the given user, newest first.
func (c *Client) OwnerListings(ctx context.Context, s *Session, username string) ([]Listing, error) {
	var list []Listing
	if err := c.do(ctx, s, http.MethodGet, "/"+username+"/listings", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
