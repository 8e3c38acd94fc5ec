package listings

import (
	"time"
)

// ListingLike represents a like of a listing.
type ListingLike struct {
	// Override default GORM Model fields
	ID        uint      `gorm:"primary_key"`
	CreatedAt time.Time `gorm:"type:timestamp(3) NULL"`
	UpdatedAt time.Time
	// DeletedAt is not included in order to disable the soft delete feature.

	// The ID of the user that made the like
	UserID *uint `gorm:"unique_index:idx_user_listing_like"`

	// The ID of the listing that was liked
	ListingID *uint `gorm:"unique_index:idx_user_listing_like"`
}

// ListingLikes is an array of ListingLike
type ListingLikes []ListingLike
