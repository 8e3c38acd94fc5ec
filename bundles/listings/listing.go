package listings

import (
	"time"

	"github.com/homefeed/listings-server/bundles/category"
	"github.com/jinzhu/gorm"
)

// Listing represents a property listing visible in the feed.
//
// A listing contains the information a poster shares about a single
// property: title, location, price, image and a one-time rating.
//
// swagger:model dbListing
type Listing struct {
	// Override default GORM Model fields
	ID        uint      `gorm:"primary_key" json:"-"`
	CreatedAt time.Time `gorm:"type:timestamp(3) NULL" json:"created_at"`
	UpdatedAt time.Time `json:"-"`
	// Added 2 milliseconds to DeletedAt field to help disambiguate when soft
	// deleted rows are involved.
	DeletedAt *time.Time `gorm:"type:timestamp(2) NULL" sql:"index" json:"-"`

	// UUID is the public identifier of the listing. It never changes and is
	// never reused, even after the listing is removed (rows are soft deleted).
	UUID *string `gorm:"not null;unique" json:"id,omitempty"`

	// The title of the listing
	Title *string `json:"title,omitempty"`

	// Price is a display string with a normalized leading currency marker
	// (eg. "$1200"). It is stored as text and never used for arithmetic.
	Price *string `json:"price,omitempty"`

	// The location of the property
	Location *string `json:"location,omitempty"`

	// A description of the property (max 65,535 chars)
	Description *string `gorm:"type:text" json:"description,omitempty"`

	// ImageURL is a reference to an externally hosted image. It is not
	// validated for reachability.
	ImageURL *string `json:"image,omitempty"`

	// Rating is an integer in [0,5], set once at creation and never
	// recomputed from other users' input.
	Rating int `json:"rating"`

	// Number of likes
	Likes int `json:"likes,omitempty"`

	// PostedBy is a snapshot of the poster's display name at creation time.
	// Renaming the poster later does not update past listings.
	PostedBy *string `json:"postedby,omitempty"`

	// PostedDate is a human-readable date snapshot (eg. "January 2, 2006").
	// Feed ordering uses CreatedAt, not this field.
	PostedDate *string `json:"posteddate,omitempty"`

	// The username of the User that created this listing (usually got from
	// the JWT)
	Owner *string `json:"owner,omitempty"`

	// Property types associated to this listing
	Categories category.Categories `gorm:"many2many:listing_categories;" json:"categories,omitempty"`

	// IsLiked reports whether the requesting user liked this listing. Only
	// set on responses to authenticated requests; not persisted.
	IsLiked bool `gorm:"-" json:"is_liked,omitempty"`
}

// GetID returns the ID
func (l *Listing) GetID() uint {
	return l.ID
}

// GetUUID returns the listing's public identifier
func (l *Listing) GetUUID() *string {
	return l.UUID
}

// GetOwner returns the listing's owner
func (l *Listing) GetOwner() *string {
	return l.Owner
}

// Listings is an array of Listing
type Listings []Listing

// QueryForListings returns a gorm query configured to query Listings with
// preloaded Categories.
func QueryForListings(q *gorm.DB) *gorm.DB {
	return q.Model(&Listing{}).Preload("Categories")
}

// ByUUID queries a Listing by its public identifier.
func ByUUID(tx *gorm.DB, uuid string) (*Listing, error) {
	var listing Listing
	if err := QueryForListings(tx).Where("uuid = ?", uuid).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// CreateListing encapsulates data required to create a listing
type CreateListing struct {
	// The title of the listing
	// required: true
	Title string `json:"title" validate:"required,min=3" form:"title"`
	// Price display text. A missing leading currency marker is normalized
	// into the stored value.
	// required: true
	Price string `json:"price" validate:"required,priceformat" form:"price"`
	// The location of the property
	// required: true
	Location string `json:"location" validate:"required" form:"location"`
	// Optional description
	Description string `json:"description" form:"description"`
	// URL of the externally hosted listing image
	// required: true
	ImageURL string `json:"image" validate:"required,url" form:"image"`
	// Rating given by the poster
	// required: true
	// minimum: 1
	// maximum: 5
	Rating int `json:"rating" validate:"required,gte=1,lte=5" form:"rating"`
	// A comma separated list of property types
	Categories string `json:"categories" validate:"omitempty,printascii" form:"categories"`
	// Optional Owner of the listing. Defaults to the poster. Posting on
	// behalf of another user requires system admin rights.
	Owner string `json:"owner" form:"owner"`
}
