package client

import (
	"context"
	"log"
	"sync"
)

// LikeState tracks how an item's local like flag relates to the backend.
type LikeState int

const (
	// LikeSynced means the local like flag matches the last confirmed
	// backend state.
	LikeSynced LikeState = iota
	// LikePending means an optimistic flip is in flight and has not been
	// confirmed yet.
	LikePending
)

// FeedItem is a listing plus the transient like state machine for it.
type FeedItem struct {
	Listing

	// State is LikeSynced or LikePending.
	State LikeState
}

// Feed is the view-model for a listings screen. It keeps a local mirror of
// the backend results, applies like toggles optimistically and reverts them
// when the backend rejects the write.
//
// All exported methods are safe for concurrent use. Remote completions that
// arrive after Close are discarded silently.
type Feed struct {
	client  *Client
	session *Session

	mu     sync.Mutex
	items  []FeedItem
	closed bool
}

// NewFeed returns a Feed backed by the given client and session. The session
// may be nil for a logged out user; like toggles then become silent no-ops.
func NewFeed(c *Client, s *Session) *Feed {
	return &Feed{client: c, session: s}
}

// Refresh fully replaces the local listing collection with a fresh backend
// result. There is no incremental merge: pending like flips on items that
// survive the refresh are dropped in favor of the backend state.
func (f *Feed) Refresh(ctx context.Context) error {
	list, err := f.client.List(ctx, f.session)
	if err != nil {
		return err
	}

	items := make([]FeedItem, 0, len(list))
	for _, l := range list {
		items = append(items, FeedItem{Listing: l, State: LikeSynced})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.items = items
	return nil
}

// RefreshLiked replaces the local collection with the listings liked by the
// session user. For a logged out user the collection becomes empty.
func (f *Feed) RefreshLiked(ctx context.Context) error {
	if f.session == nil {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.items = nil
		return nil
	}

	list, err := f.client.LikedListings(ctx, f.session, f.session.UserID)
	if err != nil {
		return err
	}

	items := make([]FeedItem, 0, len(list))
	for _, l := range list {
		l.IsLiked = true
		items = append(items, FeedItem{Listing: l, State: LikeSynced})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.items = items
	return nil
}

// Items returns a snapshot of the current feed items.
func (f *Feed) Items() []FeedItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := make([]FeedItem, len(f.items))
	copy(snapshot, f.items)
	return snapshot
}

// Item returns a snapshot of a single feed item by listing id.
func (f *Feed) Item(id string) (FeedItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexLocked(id); i >= 0 {
		return f.items[i], true
	}
	return FeedItem{}, false
}

// ToggleLike flips the like flag of the given listing optimistically and
// fires the backend write in the background. On backend failure the flip is
// reverted and the error logged. Toggling while logged out is a silent no-op.
// The returned boolean is the new (optimistic) like state.
// The backend write is detached from the caller's ctx: once fired it is
// never cancelled, even if the originating screen goes away.
func (f *Feed) ToggleLike(ctx context.Context, id string) bool {
	if f.session == nil {
		return false
	}

	f.mu.Lock()
	i := f.indexLocked(id)
	if i < 0 || f.closed {
		f.mu.Unlock()
		return false
	}

	// Optimistic flip.
	target := !f.items[i].IsLiked
	f.applyFlipLocked(i, target)
	f.items[i].State = LikePending
	f.mu.Unlock()

	go f.confirmToggle(id, target)

	return target
}

// confirmToggle performs the backend write for an optimistic flip and
// settles the item's state machine: LikeSynced on success, reverted to the
// prior state on failure. Completions for items that disappeared (refresh,
// removal) or for a closed feed are discarded.
func (f *Feed) confirmToggle(id string, target bool) {
	// The write runs on its own context. Cancelling the screen context that
	// triggered the toggle must not abort an in-flight like.
	ctx := context.Background()

	var err error
	if target {
		_, err = f.client.Like(ctx, f.session, id)
	} else {
		_, err = f.client.Unlike(ctx, f.session, id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	i := f.indexLocked(id)
	if i < 0 || f.items[i].State != LikePending {
		// The item was replaced by a refresh or removed. The backend state
		// wins; nothing to settle here.
		return
	}

	if err != nil {
		// Revert the optimistic flip and report once. No automatic retry.
		f.applyFlipLocked(i, !target)
		log.Printf("feed: like toggle failed for listing %s: %v", id, err)
	}
	f.items[i].State = LikeSynced
}

// Close marks the feed as torn down. In-flight requests are not cancelled;
// their completions are simply discarded.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.items = nil
}

// indexLocked returns the position of the listing with the given id, or -1.
func (f *Feed) indexLocked(id string) int {
	for i := range f.items {
		if f.items[i].ID == id {
			return i
		}
	}
	return -1
}

// applyFlipLocked sets the local like flag and adjusts the like counter.
func (f *Feed) applyFlipLocked(i int, liked bool) {
	f.items[i].IsLiked = liked
	if liked {
		f.items[i].Likes++
	} else if f.items[i].Likes > 0 {
		f.items[i].Likes--
	}
}
