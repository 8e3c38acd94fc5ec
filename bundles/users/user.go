package users

import (
	"time"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// UniqueOwner is a separate table to help ensure username uniqueness over
// time. A username stays claimed even after its user is removed, so listing
// ownership snapshots keep pointing at a name that can never be taken over.
type UniqueOwner struct {
	Name *string `gorm:"primary_key:true"`

	CreatedAt time.Time `gorm:"type:timestamp(3) NULL"`

	UpdatedAt time.Time

	DeletedAt *time.Time `sql:"index"`
}

// User information
//
// swagger:model
type User struct {
	gorm.Model

	// Identity is the external identity provider's subject for this user
	// (usually got from the JWT). The server never creates identities.
	Identity *string `json:"identity,omitempty"`

	// Person display name. Snapshotted into listings as PostedBy.
	Name *string `json:"name,omitempty"`

	// Username is unique in the community
	Username *string `gorm:"not null;unique" json:"username,omitempty" validate:"required,min=3,alphanum,notinblacklist"`
	// Note: foreign keys must be added manually (through Model().AddForeignKey())

	Email *string `json:"email,omitempty" validate:"required,email"`

	// ListingCount is the number of listings posted by this user.
	ListingCount *uint `json:"listing_count,omitempty"`

	// LikedListings is the number of listings liked by this user.
	LikedListings *uint `json:"liked_listings,omitempty"`

	// AccessTokens are personal access tokens granted to a user by a user.
	AccessTokens gz.AccessTokens
}

// Users is an slice of User
type Users []User

// UserResponse stores user information used in REST responses.
//
// swagger:model
type UserResponse struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	// private
	Email string `json:"email"`
	// private
	ID uint `json:"id"`
	// True if the user is a system administrator
	SysAdmin bool `json:"sysAdmin"`
}

// UserResponses is a slice of UserResponse
// swagger:model
type UserResponses []UserResponse

// UpdateUserInput encapsulates data that can be updated in an user
type UpdateUserInput struct {
	// Optional name
	Name *string `json:"name,omitempty"`
	// Optional email
	Email *string `json:"email" validate:"omitempty,email"`
}

// IsEmpty returns true is the struct is empty.
func (uu UpdateUserInput) IsEmpty() bool {
	return uu.Name == nil && uu.Email == nil
}

// ByUsername queries a user by username.
func ByUsername(tx *gorm.DB, username string, deleted bool) (*User, *gz.ErrMsg) {
	q := tx
	if deleted {
		// Allow to search in already deleted users
		q = q.Unscoped()
	}
	var user User
	if q.Where("username = ?", username).First(&user); q.Error != nil && !q.RecordNotFound() {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, q.Error)
	}
	if user.Username == nil {
		return nil, gz.NewErrorMessage(gz.ErrorUserUnknown)
	}
	return &user, nil
}

// ByIdentity queries a user by identity.
func ByIdentity(tx *gorm.DB, identity string, deleted bool) (*User, *gz.ErrMsg) {
	q := tx
	if deleted {
		// Allow to search in already deleted users
		q = q.Unscoped()
	}
	var aUser User
	if q.Where("identity = ?", identity).First(&aUser); q.Error != nil && !q.RecordNotFound() {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, q.Error)
	}
	if aUser.Identity == nil || *aUser.Identity != identity {
		return nil, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}
	return &aUser, nil
}

// OwnerByName queries the unique owner names.
func OwnerByName(tx *gorm.DB, name string, deleted bool) (*UniqueOwner, *gz.ErrMsg) {
	q := tx
	if deleted {
		// Allow to search in already deleted users
		q = q.Unscoped()
	}
	var owner UniqueOwner
	if q.Where("name = ?", name).First(&owner); q.Error != nil && !q.RecordNotFound() {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, q.Error)
	}
	if owner.Name == nil {
		return nil, gz.NewErrorMessage(gz.ErrorUserUnknown)
	}
	return &owner, nil
}
