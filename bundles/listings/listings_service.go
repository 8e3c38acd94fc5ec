package listings

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/go-sql-driver/mysql"
	"github.com/homefeed/listings-server/bundles/category"
	"github.com/homefeed/listings-server/bundles/users"
	"github.com/homefeed/listings-server/globals"
	"github.com/homefeed/listings-server/permissions"
	"github.com/jinzhu/gorm"
	uuid "github.com/satori/go.uuid"
)

// postedDateLayout is the human-readable format stored in PostedDate.
const postedDateLayout = "January 2, 2006"

// feedCacheKey is the memcache key holding the result of a basic feed query.
const feedCacheKey = "listings_list_feed"

// duplicateEntryErrNum is the MySQL error number returned when an insert
// violates a unique index.
const duplicateEntryErrNum = 1062

// Service is the main struct exported by this Listings Service.
// It was meant as a way to structure code and help future extensions.
type Service struct{}

// GetListing returns a listing by its public id.
// The user argument is the user requesting the operation; it is used to
// resolve the IsLiked field and can be nil.
func (ms *Service) GetListing(tx *gorm.DB, listingID string,
	user *users.User) (*Listing, *gz.ErrMsg) {

	listing, err := ByUUID(tx, listingID)
	if err != nil {
		em := gz.NewErrorMessageWithArgs(gz.ErrorNameNotFound, err, []string{listingID})
		return nil, em
	}

	if user != nil {
		if ll, _ := ms.getListingLike(tx, listing, user); ll != nil {
			listing.IsLiked = true
		}
	}

	return listing, nil
}

// isBasicListingListQuery returns a boolean that indicates if this is a basic
// `GET /listings` query. In this case, we can ideally use the memory cache to
// reduce the DB burden.
func isBasicListingListQuery(owner *string, order, search string,
	likedBy *users.User, categories *category.Categories, user *users.User) bool {
	return globals.QueryCache != nil && owner == nil && order == "" &&
		search == "" && likedBy == nil && categories == nil && user == nil
}

// getListingListCache attempts to get a query result from memcache.
func getListingListCache(basicQuery bool) (*Listings, bool) {
	if basicQuery {
		item, err := globals.QueryCache.Get(feedCacheKey)
		// If no error, then unmarshal the bytes to the struct. Otherwise the
		// normal query will be performed.
		if err == nil {
			var cached Listings
			if err = json.Unmarshal(item.Value, &cached); err == nil {
				return &cached, true
			}
		}
	}
	return nil, false
}

// invalidateListingListCache removes cached feed results after a write, so
// that a poster immediately sees their own listing (and likes) in the feed.
func invalidateListingListCache(ctx context.Context) {
	if globals.QueryCache == nil {
		return
	}
	if err := globals.QueryCache.Delete(feedCacheKey); err != nil && err != memcache.ErrCacheMiss {
		gz.LoggerFromContext(ctx).Error("Failed to clear the feed cache.", err)
	}
}

// ListingList returns a list of listings, newest first.
// If the likedBy argument is set, it will return the list of listings liked
// by that user. Likes pointing at removed listings are silently dropped from
// the result.
// The user argument is the user requesting the operation; when set, the
// IsLiked field of each returned listing is resolved against it.
func (ms *Service) ListingList(tx *gorm.DB, owner *string, order, search string,
	likedBy *users.User, categories *category.Categories,
	user *users.User) (*Listings, *gz.ErrMsg) {

	basicQuery := isBasicListingListQuery(owner, order, search, likedBy, categories, user)

	// Try the memory cache first
	if cached, ok := getListingListCache(basicQuery); ok {
		return cached, nil
	}

	// Create query
	q := QueryForListings(tx)

	if categories != nil && len(*categories) > 0 {
		var categoryIds []uint
		for _, c := range *categories {
			categoryIds = append(categoryIds, c.ID)
		}
		subquery := tx.Table("listing_categories").Select("DISTINCT(listing_id)").Where("category_id IN (?)", categoryIds).QueryExpr()
		q = q.Where("id IN (?)", subquery)
	}

	// Override default Order BY, unless the user explicitly requested ASC order
	if !(order != "" && strings.ToLower(order) == "asc") {
		// Important: you need to reassign 'q' to keep the updated query
		q = q.Order("created_at desc, id", true)
	}

	// Check if we should return the list of liked listings instead.
	if likedBy != nil {
		// The inner join skips likes whose listing was removed.
		q = q.Joins("JOIN listing_likes ON listings.id = listing_likes.listing_id").Where("user_id = ?", &likedBy.ID)
	} else {
		if owner != nil {
			q = q.Where("owner = ?", *owner)
		}

		// If a search criteria was defined, then also apply a fulltext search
		if search != "" {
			// Trim leading and trailing whitespaces
			searchStr := strings.TrimSpace(search)
			if len(searchStr) > 0 {
				// Note: this is a fulltext search IN NATURAL LANGUAGE MODE.
				// See https://dev.mysql.com/doc/refman/5.7/en/fulltext-search.html for other
				// modes, eg BOOLEAN and WITH QUERY EXPANSION modes.
				sq := "SELECT id FROM listings WHERE MATCH (title, description, location) AGAINST (?);"
				var ids []int
				if err := tx.Raw(sq, searchStr).Pluck("id", &ids).Error; err != nil {
					em := gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
					return nil, em
				}
				// Now that we got the IDs, use them in the main query
				q = q.Where("id IN (?)", ids)
			}
		}
	}

	var listingList Listings
	if err := q.Find(&listingList).Error; err != nil {
		em := gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
		return nil, em
	}

	// Resolve the IsLiked field with a single query over the user's likes.
	if user != nil && len(listingList) > 0 {
		var likes ListingLikes
		if err := tx.Where("user_id = ?", user.ID).Find(&likes).Error; err != nil {
			em := gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
			return nil, em
		}
		liked := make(map[uint]bool, len(likes))
		for _, l := range likes {
			if l.ListingID != nil {
				liked[*l.ListingID] = true
			}
		}
		for i := range listingList {
			listingList[i].IsLiked = liked[listingList[i].ID]
		}
	}

	// Cache the result if it's a basic query.
	if basicQuery {
		ctx := context.Background()
		listingsBytes, err := json.Marshal(listingList)
		if err != nil {
			gz.LoggerFromContext(ctx).Error("Error marshalling listings result", err)
		} else if err := globals.QueryCache.Set(&memcache.Item{Key: feedCacheKey, Value: listingsBytes}); err != nil {
			gz.LoggerFromContext(ctx).Error("Error caching listing list result", err)
		}
	}

	return &listingList, nil
}

// normalizePrice returns the price display text with a leading currency
// marker. Values that already carry one are kept as-is.
func normalizePrice(price string) string {
	p := strings.TrimSpace(price)
	if !strings.HasPrefix(p, "$") {
		p = "$" + p
	}
	return p
}

// CreateListing creates a new listing.
// creator argument is the active user requesting the operation.
func (ms *Service) CreateListing(ctx context.Context, tx *gorm.DB,
	cl CreateListing, creator *users.User) (*Listing, *gz.ErrMsg) {

	if creator == nil {
		return nil, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}

	// Process the optional property types
	var cats *category.Categories
	if cl.Categories != "" {
		var err error
		cats, err = category.StrSliceToCategories(tx, gz.StrToSlice(cl.Categories))
		if err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorFormInvalidValue, err)
		}
		if len(*cats) > globals.MaxCategoriesPerListing {
			return nil, gz.NewErrorMessage(gz.ErrorFormInvalidValue)
		}
	}

	// Set the owner
	owner := cl.Owner
	if owner == "" {
		owner = *creator.Username
	} else {
		ok, em := users.VerifyOwner(tx, owner, *creator.Username, permissions.Read)
		if !ok {
			return nil, em
		}
	}

	// The poster's display name and the posting date are snapshots. Renaming
	// the user afterwards must not rewrite existing listings.
	postedBy := "Anonymous"
	if creator.Name != nil && *creator.Name != "" {
		postedBy = *creator.Name
	}
	createdAt := time.Now()
	postedDate := createdAt.Format(postedDateLayout)
	price := normalizePrice(cl.Price)

	newUUID := uuid.NewV4().String()
	listing := Listing{
		UUID:       &newUUID,
		CreatedAt:  createdAt,
		Title:      &cl.Title,
		Price:      &price,
		Location:   &cl.Location,
		ImageURL:   &cl.ImageURL,
		Rating:     cl.Rating,
		PostedBy:   &postedBy,
		PostedDate: &postedDate,
		Owner:      &owner,
	}
	if cl.Description != "" {
		listing.Description = &cl.Description
	}
	if cats != nil {
		listing.Categories = *cats
	}

	if err := tx.Create(&listing).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}

	// Give write permissions to the owner
	if ok, em := globals.Permissions.AddPermission(owner, newUUID, permissions.Write); !ok {
		return nil, em
	}

	// Update the user's listing counter
	if err := tx.Model(creator).Update("listing_count",
		gorm.Expr("IFNULL(listing_count, 0) + 1")).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}

	invalidateListingListCache(ctx)
	gz.LoggerFromContext(ctx).Info("Listing created. Id=", newUUID, " Owner=", owner)

	return &listing, nil
}

// RemoveListing removes a listing. The user argument is the requesting user.
// It is used to check if the user can perform the operation.
// The listing row is soft deleted, so its public id is never reused.
func (ms *Service) RemoveListing(ctx context.Context, tx *gorm.DB, listingID string,
	user *users.User) *gz.ErrMsg {

	if user == nil {
		return gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}

	listing, em := ms.GetListing(tx, listingID, user)
	if em != nil {
		return em
	}

	// make sure the user requesting removal has the correct permissions
	ok, em := globals.Permissions.IsAuthorized(*user.Username, *listing.UUID, permissions.Write)
	if !ok {
		return em
	}

	if err := tx.Delete(listing).Error; err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}

	// remove resource from permission db.
	// Note: likes pointing at this listing are left in place. List queries
	// join against live listings, so dangling likes are never surfaced.
	ok, em = globals.Permissions.RemoveResource(*listing.UUID)
	if !ok {
		return em
	}

	invalidateListingListCache(ctx)
	gz.LoggerFromContext(ctx).Info("Listing removed. Id=", *listing.UUID)

	return nil
}

// getListingLike returns a listing like.
func (ms *Service) getListingLike(tx *gorm.DB, listing *Listing, user *users.User) (*ListingLike, *gz.ErrMsg) {
	var listingLike ListingLike
	if err := tx.Where("user_id = ? AND listing_id = ?", user.ID, listing.ID).First(&listingLike).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorIDNotFound, err)
	}
	return &listingLike, nil
}

// isDuplicateEntryError returns true if the given error is a MySQL unique
// index violation.
func isDuplicateEntryError(err error) bool {
	mysqlErr, ok := err.(*mysql.MySQLError)
	return ok && mysqlErr.Number == duplicateEntryErrNum
}

// CreateListingLike creates a ListingLike.
// Liking an already liked listing is not an error: the unique index on
// (user, listing) collapses concurrent duplicate likes into a single row, and
// the duplicate insert resolves to the existing like without touching the
// counter.
// Returns the listingLike and the updated like counter, or a gz.errMsg.
func (ms *Service) CreateListingLike(ctx context.Context, tx *gorm.DB,
	listingID string, user *users.User) (*ListingLike, int, *gz.ErrMsg) {

	if user == nil {
		return nil, 0, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}

	listing, em := ms.GetListing(tx, listingID, user)
	if em != nil {
		return nil, 0, em
	}

	// Register the like.
	listingLike := ListingLike{UserID: &user.ID, ListingID: &listing.ID}
	if err := tx.Create(&listingLike).Error; err != nil {
		if isDuplicateEntryError(err) {
			existing, em := ms.getListingLike(tx, listing, user)
			if em != nil {
				return nil, 0, em
			}
			return existing, listing.Likes, nil
		}
		return nil, 0, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	// Update the number of likes of the listing.
	if em := ms.increaseLikeCounter(tx, listing, 1); em != nil {
		return nil, 0, em
	}

	invalidateListingListCache(ctx)
	return &listingLike, listing.Likes + 1, nil
}

// RemoveListingLike removes a ListingLike.
// Removing an absent like is a no-op that still succeeds, so retried and
// concurrent unlikes converge without errors.
// Returns the removed listingLike and the updated like counter, or a
// gz.errMsg.
func (ms *Service) RemoveListingLike(ctx context.Context, tx *gorm.DB,
	listingID string, user *users.User) (*ListingLike, int, *gz.ErrMsg) {

	if user == nil {
		return nil, 0, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}

	listing, em := ms.GetListing(tx, listingID, user)
	if em != nil {
		return nil, 0, em
	}

	// Unlike the listing.
	var listingLike ListingLike
	q := tx.Where("user_id = ? AND listing_id = ?", &user.ID, &listing.ID).Delete(&listingLike)
	if q.Error != nil {
		return nil, 0, gz.NewErrorMessageWithBase(gz.ErrorDbDelete, q.Error)
	}

	// Decrease the number of likes of the listing if there was an existing like
	likes := listing.Likes
	if q.RowsAffected > 0 {
		if em := ms.decreaseLikeCounter(tx, listing, uint(q.RowsAffected)); em != nil {
			return nil, 0, em
		}
		likes -= int(q.RowsAffected)
		invalidateListingListCache(ctx)
	}

	return &listingLike, likes, nil
}

// applyExpression updates a listing using a SQL expression that can perform
// operations on referred values.
func (ms *Service) applyExpression(tx *gorm.DB, listing *Listing, field string, expr *gorm.SqlExpr) *gz.ErrMsg {
	if err := tx.Model(listing).Update(field, expr).Error; err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	return nil
}

// increaseLikeCounter increases the current like count of a listing.
func (ms *Service) increaseLikeCounter(tx *gorm.DB, listing *Listing, delta uint) *gz.ErrMsg {
	return ms.applyExpression(tx, listing, "likes", gorm.Expr("likes + ?", delta))
}

// decreaseLikeCounter decreases the current like count of a listing.
func (ms *Service) decreaseLikeCounter(tx *gorm.DB, listing *Listing, delta uint) *gz.ErrMsg {
	return ms.applyExpression(tx, listing, "likes", gorm.Expr("likes - ?", delta))
}

// ComputeAllCounters is an initialization function that iterates all listings
// and updates their like counter, based on the number of records in the
// listing_likes table.
func (ms *Service) ComputeAllCounters(tx *gorm.DB) *gz.ErrMsg {
	var listingList Listings
	if err := tx.Model(&Listing{}).Unscoped().Find(&listingList).Error; err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	for _, listing := range listingList {
		if _, em := ms.computeLikeCounter(tx, &listing); em != nil {
			return em
		}
	}
	return nil
}

// computeLikeCounter counts the number of likes and updates the listing
// accordingly.
// This query is VERY EXPENSIVE. Only use to set the state if it doesn't exist.
// For all other purposes, the use of increase/decreaseLikeCounter is recommended.
func (ms *Service) computeLikeCounter(tx *gorm.DB, listing *Listing) (int, *gz.ErrMsg) {
	var counter int
	// Count the number of likes of the listing.
	if err := tx.Model(&ListingLike{}).Where("listing_id = ?", listing.ID).Count(&counter).Error; err != nil {
		return 0, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	// Update the number of likes of the listing.
	if err := tx.Model(listing).Update("likes", counter).Error; err != nil {
		return 0, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	return counter, nil
}
