package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedServer is a tiny in-memory backend for feed tests.
func feedServer(listings []Listing, failLikes *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/listings" {
			json.NewEncoder(w).Encode(listings)
			return
		}
		// Like / unlike endpoints.
		if failLikes != nil && atomic.LoadInt32(failLikes) != 0 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, 1)
	}))
}

func testListings() []Listing {
	return []Listing{
		{ID: "l2", Title: "Modern Loft", Likes: 5},
		{ID: "l1", Title: "Sunny Flat", Likes: 2},
	}
}

func TestFeedRefreshReplacesItems(t *testing.T) {
	srv := feedServer(testListings(), nil)
	defer srv.Close()

	f := NewFeed(NewClient(srv.URL, nil), testSession())
	require.NoError(t, f.Refresh(context.Background()))

	items := f.Items()
	require.Len(t, items, 2)
	// Backend order is preserved (newest first).
	assert.Equal(t, "l2", items[0].ID)
	assert.Equal(t, LikeSynced, items[0].State)
}

func TestFeedToggleOptimistic(t *testing.T) {
	srv := feedServer(testListings(), nil)
	defer srv.Close()

	f := NewFeed(NewClient(srv.URL, nil), testSession())
	require.NoError(t, f.Refresh(context.Background()))

	// The flip is visible immediately, before remote confirmation.
	liked := f.ToggleLike(context.Background(), "l1")
	assert.True(t, liked)

	item, ok := f.Item("l1")
	require.True(t, ok)
	assert.True(t, item.IsLiked)
	assert.Equal(t, 3, item.Likes)

	// The backend confirms and the item settles to Synced.
	require.Eventually(t, func() bool {
		item, ok := f.Item("l1")
		return ok && item.State == LikeSynced
	}, time.Second, 5*time.Millisecond)

	item, _ = f.Item("l1")
	assert.True(t, item.IsLiked)
}

// A failed like write reverts the optimistic flip.
func TestFeedToggleRevertsOnFailure(t *testing.T) {
	var failLikes int32 = 1
	srv := feedServer(testListings(), &failLikes)
	defer srv.Close()

	f := NewFeed(NewClient(srv.URL, nil), testSession())
	require.NoError(t, f.Refresh(context.Background()))

	liked := f.ToggleLike(context.Background(), "l1")
	assert.True(t, liked)

	require.Eventually(t, func() bool {
		item, ok := f.Item("l1")
		return ok && item.State == LikeSynced
	}, time.Second, 5*time.Millisecond)

	item, ok := f.Item("l1")
	require.True(t, ok)
	assert.False(t, item.IsLiked, "failed toggle must revert")
	assert.Equal(t, 2, item.Likes)
}

// Toggling while logged out is a silent no-op.
func TestFeedToggleLoggedOut(t *testing.T) {
	srv := feedServer(testListings(), nil)
	defer srv.Close()

	f := NewFeed(NewClient(srv.URL, nil), nil)
	require.NoError(t, f.Refresh(context.Background()))

	liked := f.ToggleLike(context.Background(), "l1")
	assert.False(t, liked)

	item, ok := f.Item("l1")
	require.True(t, ok)
	assert.False(t, item.IsLiked)
	assert.Equal(t, LikeSynced, item.State)
}

// Cancelling the screen context right after a toggle must not abort the
// in-flight like write: the backend still receives it and the item settles
// to the liked state.
func TestFeedToggleSurvivesCallerCancel(t *testing.T) {
	var likeRequests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/listings" {
			json.NewEncoder(w).Encode(testListings())
			return
		}
		atomic.AddInt32(&likeRequests, 1)
		fmt.Fprint(w, 1)
	}))
	defer srv.Close()

	f := NewFeed(NewClient(srv.URL, nil), testSession())
	require.NoError(t, f.Refresh(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	liked := f.ToggleLike(ctx, "l1")
	cancel()
	assert.True(t, liked)

	require.Eventually(t, func() bool {
		item, ok := f.Item("l1")
		return ok && item.State == LikeSynced
	}, time.Second, 5*time.Millisecond)

	item, ok := f.Item("l1")
	require.True(t, ok)
	assert.True(t, item.IsLiked, "the write must not be cancelled with the caller ctx")
	assert.NotZero(t, atomic.LoadInt32(&likeRequests))
}

// Completions arriving after Close are discarded without panicking.
func TestFeedCloseDiscardsLateCompletions(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/listings" {
			json.NewEncoder(w).Encode(testListings())
			return
		}
		<-release
		fmt.Fprint(w, 1)
	}))
	defer srv.Close()

	f := NewFeed(NewClient(srv.URL, nil), testSession())
	require.NoError(t, f.Refresh(context.Background()))

	f.ToggleLike(context.Background(), "l1")
	f.Close()
	close(release)

	// The feed stays torn down; the late completion is dropped.
	assert.Empty(t, f.Items())
	_, ok := f.Item("l1")
	assert.False(t, ok)
}

// A refresh that lands while a toggle is pending wins: the backend state
// replaces the optimistic one and the late completion does not resurrect it.
func TestFeedRefreshWhilePending(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/listings" {
			json.NewEncoder(w).Encode(testListings())
			return
		}
		<-release
		fmt.Fprint(w, 1)
	}))
	defer srv.Close()

	f := NewFeed(NewClient(srv.URL, nil), testSession())
	require.NoError(t, f.Refresh(context.Background()))

	f.ToggleLike(context.Background(), "l1")
	require.NoError(t, f.Refresh(context.Background()))
	close(release)

	item, ok := f.Item("l1")
	require.True(t, ok)
	assert.False(t, item.IsLiked)
	assert.Equal(t, 2, item.Likes)
	assert.Equal(t, LikeSynced, item.State)
}
