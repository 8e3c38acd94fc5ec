package listings

import (
	"bufio"
	"context"
	"database/sql/driver"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	mocket "github.com/Selvatico/go-mocket"
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/go-sql-driver/mysql"
	"github.com/homefeed/listings-server/bundles/users"
	"github.com/homefeed/listings-server/globals"
	"github.com/homefeed/listings-server/permissions"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMockDb registers the mock DB driver and returns a gorm connection
// backed by it.
func setupMockDb(t *testing.T) *gorm.DB {
	mocket.Catcher.Register()
	mocket.Catcher.Logging = false
	db, err := gorm.Open(mocket.DRIVER_NAME, "any_string")
	require.NoError(t, err)
	mocket.Catcher.Reset()
	return db
}

func testContext() context.Context {
	return gz.NewContextWithLogger(context.Background(),
		gz.NewLoggerNoRollbar("test", gz.VerbosityDebug))
}

func mockTestUser() *users.User {
	username := "alice"
	identity := "test-user-identity"
	u := users.User{Username: &username, Identity: &identity}
	u.ID = 101
	return &u
}

// setupMockListingReply makes listing queries return a single listing.
func setupMockListingReply(likes int) {
	listingReply := []map[string]interface{}{{
		"id": 100, "uuid": "listing-uuid", "title": "Sunny Flat",
		"price": "$1200", "location": "Austin", "rating": 4, "likes": likes,
	}}
	mocket.Catcher.NewMock().WithQuery(`SELECT * FROM "listings"  WHERE`).WithReply(listingReply)
}

func TestNormalizePrice(t *testing.T) {
	assert.Equal(t, "$1200", normalizePrice("1200"))
	assert.Equal(t, "$1200", normalizePrice("$1200"))
	assert.Equal(t, "$1,600.50", normalizePrice(" 1,600.50 "))
	assert.Equal(t, "$1600/month", normalizePrice("$1600/month"))
}

func TestIsDuplicateEntryError(t *testing.T) {
	assert.True(t, isDuplicateEntryError(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDuplicateEntryError(&mysql.MySQLError{Number: 1045}))
	assert.False(t, isDuplicateEntryError(gorm.ErrRecordNotFound))
}

func TestCreateListingLike(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}

	setupMockListingReply(3)

	like, count, em := ms.CreateListingLike(testContext(), db, "listing-uuid", mockTestUser())
	require.Nil(t, em)
	require.NotNil(t, like)
	assert.Equal(t, uint(101), *like.UserID)
	assert.Equal(t, uint(100), *like.ListingID)
	// The like counter moves up by one.
	assert.Equal(t, 4, count)
}

func TestCreateListingLikeRequiresUser(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}

	_, _, em := ms.CreateListingLike(testContext(), db, "listing-uuid", nil)
	require.NotNil(t, em)
	assert.Equal(t, gz.ErrorAuthNoUser, em.ErrCode)
}

// A duplicate insert (unique index violation) resolves to the existing like,
// without bumping the counter. This is what makes concurrent duplicate likes
// collapse into a single row.
func TestCreateListingLikeDuplicateCollapses(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}

	setupMockListingReply(3)
	mocket.Catcher.NewMock().WithQuery(`INSERT INTO "listing_likes"`).
		WithError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	existingLikeReply := []map[string]interface{}{{"id": 2, "user_id": 101, "listing_id": 100}}
	mocket.Catcher.NewMock().WithQuery(`SELECT * FROM "listing_likes"  WHERE`).WithReply(existingLikeReply)

	like, count, em := ms.CreateListingLike(testContext(), db, "listing-uuid", mockTestUser())
	require.Nil(t, em)
	require.NotNil(t, like)
	assert.Equal(t, uint(2), like.ID)
	// Counter unchanged: no second row was created.
	assert.Equal(t, 3, count)
}

func TestRemoveListingLike(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}

	setupMockListingReply(3)
	mocket.Catcher.NewMock().WithQuery(`DELETE FROM "listing_likes"`).WithRowsNum(1)

	_, count, em := ms.RemoveListingLike(testContext(), db, "listing-uuid", mockTestUser())
	require.Nil(t, em)
	assert.Equal(t, 2, count)
}

// Unliking a listing that was not liked is a no-op that still succeeds, and
// leaves the counter untouched.
func TestRemoveListingLikeIdempotent(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}

	setupMockListingReply(3)
	mocket.Catcher.NewMock().WithQuery(`DELETE FROM "listing_likes"`).WithRowsNum(0)

	_, count, em := ms.RemoveListingLike(testContext(), db, "listing-uuid", mockTestUser())
	require.Nil(t, em)
	assert.Equal(t, 3, count)
}

// setupTestPermissions installs a globals.Permissions instance backed by an
// in-memory casbin enforcer, so that permission dependent service paths can
// run without a permissions database.
func setupTestPermissions(t *testing.T, sysAdmin string) {
	policyFile, err := os.CreateTemp(t.TempDir(), "policy*.csv")
	require.NoError(t, err)
	require.NoError(t, policyFile.Close())

	enforcer, err := casbin.NewEnforcer("../../permissions/policy.conf",
		fileadapter.NewAdapter(policyFile.Name()))
	require.NoError(t, err)

	globals.Permissions = &permissions.Permissions{}
	require.NoError(t, globals.Permissions.InitWithEnforcerAndAdapter(enforcer, nil, sysAdmin))
}

// fakeMemcached is a minimal in-process memcached. It speaks just enough of
// the text protocol (get/gets, set, delete) for the feed cache tests.
type fakeMemcached struct {
	ln net.Listener

	mu    sync.Mutex
	items map[string][]byte
}

func startFakeMemcached(t *testing.T) *fakeMemcached {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	fm := &fakeMemcached{ln: ln, items: map[string][]byte{}}
	go fm.serve()
	t.Cleanup(func() { ln.Close() })
	return fm
}

func (fm *fakeMemcached) serve() {
	for {
		conn, err := fm.ln.Accept()
		if err != nil {
			return
		}
		go fm.handle(conn)
	}
}

func (fm *fakeMemcached) handle(conn net.Conn) {
	defer conn.Close()
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	for {
		line, err := rw.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "get", "gets":
			fm.mu.Lock()
			for _, key := range fields[1:] {
				if value, ok := fm.items[key]; ok {
					fmt.Fprintf(rw, "VALUE %s 0 %d\r\n", key, len(value))
					rw.Write(value)
					rw.WriteString("\r\n")
				}
			}
			fm.mu.Unlock()
			rw.WriteString("END\r\n")
		case "set":
			size, _ := strconv.Atoi(fields[4])
			value := make([]byte, size+2)
			if _, err := io.ReadFull(rw, value); err != nil {
				return
			}
			fm.mu.Lock()
			fm.items[fields[1]] = value[:size]
			fm.mu.Unlock()
			rw.WriteString("STORED\r\n")
		case "delete":
			fm.mu.Lock()
			_, ok := fm.items[fields[1]]
			delete(fm.items, fields[1])
			fm.mu.Unlock()
			if ok {
				rw.WriteString("DELETED\r\n")
			} else {
				rw.WriteString("NOT_FOUND\r\n")
			}
		default:
			rw.WriteString("ERROR\r\n")
		}
		rw.Flush()
	}
}

// setupFeedCache points globals.QueryCache at an in-process memcached.
func setupFeedCache(t *testing.T) {
	fm := startFakeMemcached(t)
	globals.QueryCache = memcache.New(fm.ln.Addr().String())
	t.Cleanup(func() { globals.QueryCache = nil })
}

func TestGetListingNotFound(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}

	// No listing reply registered: the query returns no rows.
	_, em := ms.GetListing(db, "no-such-listing", nil)
	require.NotNil(t, em)
	assert.Equal(t, gz.ErrorNameNotFound, em.ErrCode)
}

// The feed query orders by creation time descending, so a listing created
// last is listed first.
func TestListingListNewestFirst(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}

	listingsReply := []map[string]interface{}{
		{"id": 101, "uuid": "uuid-late", "title": "Modern Loft"},
		{"id": 100, "uuid": "uuid-early", "title": "Sunny Flat"},
	}
	orderMock := mocket.Catcher.NewMock().WithQuery(`ORDER BY created_at desc, id`).
		WithReply(listingsReply)

	list, em := ms.ListingList(db, nil, "", "", nil, nil, nil)
	require.Nil(t, em)
	require.True(t, orderMock.Triggered, "the feed query must order newest first")
	require.Len(t, *list, 2)
	assert.Equal(t, "uuid-late", *(*list)[0].UUID)
	assert.Equal(t, "uuid-early", *(*list)[1].UUID)
}

// The liked-listings query joins the like rows against live listings rows.
// A like pointing at a soft deleted listing never surfaces.
func TestListingLikeListJoinsLiveListings(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}

	var query string
	likedReply := []map[string]interface{}{{"id": 100, "uuid": "listing-uuid", "title": "Sunny Flat"}}
	mocket.Catcher.NewMock().WithQuery(`JOIN listing_likes ON listings.id = listing_likes.listing_id`).
		WithReply(likedReply).
		WithCallback(func(q string, _ []driver.NamedValue) { query = q })

	list, em := ms.ListingList(db, nil, "", "", mockTestUser(), nil, nil)
	require.Nil(t, em)
	require.Len(t, *list, 1)
	assert.Contains(t, query, `"listings"."deleted_at" IS NULL`)
	assert.Contains(t, query, "user_id = ?")
}

// A basic feed query is memoized: a follow-up call is served from the cache
// even if the underlying table changed in the meantime.
func TestListingListCachesBasicFeedQuery(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}
	setupFeedCache(t)

	firstReply := []map[string]interface{}{{"id": 100, "uuid": "uuid-cached", "title": "Sunny Flat"}}
	mocket.Catcher.NewMock().WithQuery(`SELECT * FROM "listings"`).WithReply(firstReply)

	list, em := ms.ListingList(db, nil, "", "", nil, nil, nil)
	require.Nil(t, em)
	require.Len(t, *list, 1)

	// Change the table contents. The next basic query must still return the
	// memoized result.
	mocket.Catcher.Reset()
	secondReply := []map[string]interface{}{{"id": 101, "uuid": "uuid-fresh", "title": "Modern Loft"}}
	mocket.Catcher.NewMock().WithQuery(`SELECT * FROM "listings"`).WithReply(secondReply)

	cached, em := ms.ListingList(db, nil, "", "", nil, nil, nil)
	require.Nil(t, em)
	require.Len(t, *cached, 1)
	assert.Equal(t, "uuid-cached", *(*cached)[0].UUID)
}

// Creating a listing drops the memoized feed, so the poster sees the new
// listing on the very next fetch.
func TestCreateListingInvalidatesFeedCache(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}
	setupFeedCache(t)
	setupTestPermissions(t, "")

	require.NoError(t, globals.QueryCache.Set(&memcache.Item{Key: feedCacheKey, Value: []byte("[]")}))

	cl := CreateListing{Title: "Sunny Flat", Price: "1200", Location: "Austin",
		ImageURL: "https://example.org/flat.jpg", Rating: 4}
	listing, em := ms.CreateListing(testContext(), db, cl, mockTestUser())
	require.Nil(t, em)
	assert.Equal(t, "$1200", *listing.Price)

	_, err := globals.QueryCache.Get(feedCacheKey)
	assert.Equal(t, memcache.ErrCacheMiss, err)
}

// A like write also drops the memoized feed: the like counters embedded in
// it would otherwise go stale.
func TestLikeWriteInvalidatesFeedCache(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}
	setupFeedCache(t)

	require.NoError(t, globals.QueryCache.Set(&memcache.Item{Key: feedCacheKey, Value: []byte("[]")}))

	setupMockListingReply(3)
	_, _, em := ms.CreateListingLike(testContext(), db, "listing-uuid", mockTestUser())
	require.Nil(t, em)

	_, err := globals.QueryCache.Get(feedCacheKey)
	assert.Equal(t, memcache.ErrCacheMiss, err)
}

// Posting on behalf of another user requires system admin rights.
func TestCreateListingAsOtherOwner(t *testing.T) {
	db := setupMockDb(t)
	ms := &Service{}

	cl := CreateListing{Title: "Sunny Flat", Price: "$1200", Location: "Austin",
		ImageURL: "https://example.org/flat.jpg", Rating: 4, Owner: "bob"}

	setupTestPermissions(t, "")
	_, em := ms.CreateListing(testContext(), db, cl, mockTestUser())
	require.NotNil(t, em)
	assert.Equal(t, gz.ErrorUnauthorized, em.ErrCode)

	// A system admin can post as any owner.
	setupTestPermissions(t, "alice")
	listing, em := ms.CreateListing(testContext(), db, cl, mockTestUser())
	require.Nil(t, em)
	assert.Equal(t, "bob", *listing.Owner)
}
