package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *Session {
	return &Session{UserID: "alice", DisplayName: "Alice", Token: "test-jwt"}
}

func validInput() CreateListing {
	return CreateListing{
		Title:    "Sunny Flat",
		Price:    "$1200",
		Location: "Austin",
		Image:    "http://x/y.jpg",
		Rating:   4,
	}
}

// Invalid input must fail locally, before any network call is made.
func TestCreateValidationGate(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	cases := []struct {
		name  string
		mod   func(*CreateListing)
		field string
	}{
		{"missing title", func(in *CreateListing) { in.Title = "" }, "title"},
		{"missing price", func(in *CreateListing) { in.Price = "" }, "price"},
		{"missing location", func(in *CreateListing) { in.Location = "" }, "location"},
		{"missing image", func(in *CreateListing) { in.Image = "" }, "image"},
		{"zero rating", func(in *CreateListing) { in.Rating = 0 }, "rating"},
		{"rating too big", func(in *CreateListing) { in.Rating = 6 }, "rating"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mod(&in)
			_, err := c.Create(context.Background(), testSession(), in)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tc.field)
		})
	}

	assert.Zero(t, atomic.LoadInt32(&requests), "no request should reach the server")
}

func TestCreateListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/listings", r.URL.Path)
		require.Equal(t, "Bearer test-jwt", r.Header.Get("Authorization"))

		var in CreateListing
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(Listing{
			ID:       "new-uuid",
			Title:    in.Title,
			Price:    in.Price,
			Location: in.Location,
			Image:    in.Image,
			Rating:   in.Rating,
			PostedBy: "Alice",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	listing, err := c.Create(context.Background(), testSession(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "new-uuid", listing.ID)
	assert.Equal(t, "$1200", listing.Price)
}

func TestGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Get(context.Background(), nil, "no-such-id")
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestLikePermissionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Like(context.Background(), testSession(), "some-id")
	var pErr *PermissionError
	require.ErrorAs(t, err, &pErr)
}

func TestLikeReturnsCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/listings/some-id/likes", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, 7)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	count, err := c.Like(context.Background(), testSession(), "some-id")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

// A logged out toggle is a silent no-op: no error, no network traffic.
func TestToggleWithoutSession(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	liked, err := c.Toggle(context.Background(), nil, "some-id")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, atomic.LoadInt32(&requests))
}

// Repeated toggles alternate the like state: false, true, false, true.
func TestToggleAlternates(t *testing.T) {
	liked := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(Listing{ID: "some-id", IsLiked: liked})
		case r.Method == http.MethodPost:
			liked = true
			fmt.Fprint(w, 1)
		case r.Method == http.MethodDelete:
			liked = false
			fmt.Fprint(w, 0)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	s := testSession()

	for i, want := range []bool{true, false, true, false} {
		got, err := c.Toggle(context.Background(), s, "some-id")
		require.NoError(t, err, "toggle %d", i)
		assert.Equal(t, want, got, "toggle %d", i)
	}

	isLiked, err := c.IsLiked(context.Background(), s, "some-id")
	require.NoError(t, err)
	assert.False(t, isLiked)
}

func TestIsLikedWithoutSession(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)
	liked, err := c.IsLiked(context.Background(), nil, "some-id")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestListEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	list, err := c.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.List(context.Background(), nil)
	var rErr *RemoteError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, http.StatusInternalServerError, rErr.StatusCode)
}
