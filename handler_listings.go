package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/homefeed/listings-server/bundles/category"
	"github.com/homefeed/listings-server/bundles/listings"
	"github.com/homefeed/listings-server/bundles/users"
	"github.com/jinzhu/gorm"
)

// ListingList returns the list of listings, newest first. The returned value
// will be of type "listings.Listings".
// It follows the func signature defined by type "searchFnHandler".
// You can request this method with the following curl request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/listings
//
// or  curl -k -X GET --url https://localhost:4430/1.0/{username}/listings
func ListingList(owner *string, order, search string, user *users.User,
	tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	ms := &listings.Service{}

	var categories category.Categories
	if categoryFilters, ok := r.URL.Query()["category"]; ok {
		for _, f := range categoryFilters {
			categories = listingListCategoryHelper(tx, f, categories)
		}
	}
	var catsArg *category.Categories
	if len(categories) > 0 {
		catsArg = &categories
	}
	return ms.ListingList(tx, owner, order, search, nil, catsArg, user)
}

// listingListCategoryHelper appends a property type to filter in listing list
func listingListCategoryHelper(tx *gorm.DB, filter string, categories category.Categories) category.Categories {
	if cat, err := category.BySlug(tx, filter); err == nil {
		categories = append(categories, *cat)
	}
	return categories
}

// ListingLikeList returns the list of listings liked by a certain user. The
// returned value will be of type "listings.Listings". Likes whose listing was
// removed are not included.
// It follows the func signature defined by type "searchFnHandler".
// You can request this method with the following curl request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/{username}/likes/listings
func ListingLikeList(owner *string, order, search string, user *users.User,
	tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	likedBy, em := users.ByUsername(tx, *owner, true)
	if em != nil {
		return nil, em
	}
	ms := &listings.Service{}
	return ms.ListingList(tx, owner, order, search, likedBy, nil, user)
}

// ListingIndex returns a single listing. The returned value will be of
// type "listings.Listing".
// You can request this method with the following curl request:
//
//	curl -k -H "Content-Type: application/json" -X GET https://localhost:4430/1.0/listings/{listing}
func ListingIndex(listingID string, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	listing, em := (&listings.Service{}).GetListing(tx, listingID, user)
	if em != nil {
		return nil, em
	}

	return listing, nil
}

// listingCreateInput parses the request body into a CreateListing struct.
// Both JSON bodies and form submissions (urlencoded or multipart) are
// accepted.
func listingCreateInput(r *http.Request) (*listings.CreateListing, *gz.ErrMsg) {
	var cl listings.CreateListing

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		// Parse form's values
		if err := r.ParseMultipartForm(0); err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorForm, err)
		}
		// Delete temporary files from r.ParseMultipartForm(0)
		defer r.MultipartForm.RemoveAll()
		if em := ParseStruct(&cl, r, true); em != nil {
			return nil, em
		}
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorForm, err)
		}
		if em := ParseStruct(&cl, r, true); em != nil {
			return nil, em
		}
	default:
		if em := ParseStruct(&cl, r, false); em != nil {
			return nil, em
		}
	}
	return &cl, nil
}

// ListingCreate creates a new listing. The poster is retrieved from the
// passed JWT.
// You can request this method with the following curl request:
//
//	curl -k -H "Content-Type: application/json" -X POST -d '{"title":"Modern Loft",
//	  "price":"$1600", "location":"Austin, TX", "image":"https://...", "rating":4}'
//	  https://localhost:4430/1.0/listings
//	  --header 'authorization: Bearer <your-jwt-token-here>'
//
// The listing fields can also be submitted as an HTML form:
//
//	curl -k -X POST -F title="Modern Loft" -F price="\$1600"
//	  -F location="Austin, TX" -F image="https://..." -F rating=4
//	  https://localhost:4430/1.0/listings
//	  --header 'authorization: Bearer <your-jwt-token-here>'
func ListingCreate(tx *gorm.DB, w http.ResponseWriter,
	r *http.Request) (interface{}, *gz.ErrMsg) {

	user, ok, errMsg := getUserFromJWT(tx, r)
	if !ok {
		return nil, &errMsg
	}

	cl, em := listingCreateInput(r)
	if em != nil {
		return nil, em
	}

	listing, em := (&listings.Service{}).CreateListing(r.Context(), tx, *cl, user)
	if em != nil {
		return nil, em
	}

	// commit the DB transaction
	// Note: we commit the TX here on purpose, to be able to detect DB errors
	// before writing "data" to ResponseWriter. Once you write data (not headers)
	// into it the status code is set to 200 (OK).
	if err := tx.Commit().Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}

	return listing, nil
}

// ListingRemove removes a listing based on its public id
// You can request this method with the following curl request:
//
//	curl -k -X DELETE --url https://localhost:4430/1.0/listings/{listing}
//	  --header 'authorization: Bearer <your-jwt-token-here>'
func ListingRemove(listingID string, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	if em := (&listings.Service{}).RemoveListing(r.Context(), tx, listingID, user); em != nil {
		return nil, em
	}

	// commit the DB transaction
	// Note: we commit the TX here on purpose, to be able to detect DB errors
	// before writing "data" to ResponseWriter. Once you write data (not headers)
	// into it the status code is set to 200 (OK).
	if err := tx.Commit().Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return nil, nil
}

// ListingLikeCreate likes a listing
// You can request this method with the following cURL request:
//
//	curl -k -X POST https://localhost:4430/1.0/listings/{listing}/likes
//	  --header 'authorization: Bearer <your-jwt-token-here>'
func ListingLikeCreate(listingID string, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	_, count, em := (&listings.Service{}).CreateListingLike(r.Context(), tx, listingID, user)
	if em != nil {
		return nil, em
	}

	// commit the DB transaction
	// Note: we commit the TX here on purpose, to be able to detect DB errors
	// before writing "data" to ResponseWriter. Once you write data (not headers)
	// into it the status code is set to 200 (OK).
	if err := tx.Commit().Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, count)
	return nil, nil
}

// ListingLikeRemove removes a like from a listing. Removing an absent like
// succeeds too, so retried unlikes are not errors.
// You can request this method with the following cURL request:
//
//	curl -k -X DELETE https://localhost:4430/1.0/listings/{listing}/likes
//	  --header 'authorization: Bearer <your-jwt-token-here>'
func ListingLikeRemove(listingID string, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	_, count, em := (&listings.Service{}).RemoveListingLike(r.Context(), tx, listingID, user)
	if em != nil {
		return nil, em
	}

	// commit the DB transaction
	// Note: we commit the TX here on purpose, to be able to detect DB errors
	// before writing "data" to ResponseWriter. Once you write data (not headers)
	// into it the status code is set to 200 (OK).
	if err := tx.Commit().Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, count)
	return nil, nil
}
