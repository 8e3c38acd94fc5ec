package users

import (
	"context"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/homefeed/listings-server/globals"
	"github.com/homefeed/listings-server/permissions"
	"github.com/jinzhu/gorm"
)

// RemoveUser removes the given user. Returns a UserResponse with the removed user.
// The reqUser argument is the requesting user. It is used to check if the
// reqUser can perform the operation.
func RemoveUser(ctx context.Context, tx *gorm.DB, username string, reqUser *User) (*UserResponse, *gz.ErrMsg) {

	user, em := ByUsername(tx, username, false)
	if em != nil {
		return nil, em
	}

	// Make sure the JWT user is the same user to be removed
	if *user.Identity != *reqUser.Identity {
		return nil, gz.NewErrorMessage(gz.ErrorUnauthorized)
	}

	// Remove the user from the database (soft-delete). The UniqueOwner row is
	// soft-deleted too, keeping the username claimed forever.
	owner := UniqueOwner{Name: user.Username}
	if err := tx.Delete(user).Delete(&owner).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}

	ok, em := globals.Permissions.RemoveUser(*user.Username)
	if !ok {
		return nil, em
	}

	gz.LoggerFromContext(ctx).Info("User removed. Username=", *user.Username, " Email=", *user.Email)

	response := CreateUserResponse(tx, user, reqUser)
	return &response, nil
}

// UpdateUser updates an user.
// Fields that can be currently updated: name, email.
// Note that PostedBy snapshots in already created listings are deliberately
// left untouched when a user renames.
// The reqUser argument is the requesting user. It is used to check if the
// reqUser can perform the operation.
func UpdateUser(ctx context.Context, tx *gorm.DB, username string,
	uu *UpdateUserInput, reqUser *User) (*UserResponse, *gz.ErrMsg) {

	// Sanity check: make sure the user exists
	user, em := ByUsername(tx, username, false)
	if em != nil {
		return nil, em
	}

	// Make sure the JWT user is the same user to be updated
	if *user.Identity != *reqUser.Identity {
		return nil, gz.NewErrorMessage(gz.ErrorUnauthorized)
	}

	upd := tx.Model(user)
	// Edit the fields, if present.
	if uu.Name != nil {
		upd.Update("Name", *uu.Name)
	}
	if uu.Email != nil {
		upd.Update("Email", *uu.Email)
	}

	gz.LoggerFromContext(ctx).Info("User updated. Username=", *user.Username,
		" Email=", *user.Email)

	ur := CreateUserResponse(tx, user, reqUser)
	return &ur, nil
}

// GetUserByIdentity returns a user given an identity.
// This method will fail if the identify does not correspond to an active user.
func GetUserByIdentity(tx *gorm.DB, identity string) (*UserResponse, *gz.ErrMsg) {
	user, em := ByIdentity(tx, identity, false)
	if em != nil {
		return nil, em
	}

	ur := CreateUserResponse(tx, user, user)
	return &ur, nil
}

// CreateUserResponse creates a new UserResponse struct based on the given
// User object.
// The returned UserResponse will also include user private fields if the
// requestor can access those
func CreateUserResponse(tx *gorm.DB, user, requestor *User) UserResponse {
	var response UserResponse

	// Public info
	response.Username = *user.Username
	if user.Name != nil {
		response.Name = *user.Name
	}

	response.SysAdmin = false

	// Private data should be included if the user is the same as the requestor or
	// if the requestor is a sysAdmin.
	if requestor != nil {
		isSystemAdmin := globals.Permissions.IsSystemAdmin(*requestor.Username)
		isSameUser := *user.Identity == *requestor.Identity

		// Set the SysAdmin field only if both cases apply.
		if isSystemAdmin && isSameUser {
			response.SysAdmin = true
		}

		if isSystemAdmin || isSameUser {
			response.Email = *user.Email
			response.ID = user.ID
		}
	}

	return response
}

// CreateUser creates a new User in the DB using the data from the given User
// struct. Returns a UserResponse.
func CreateUser(ctx context.Context, tx *gorm.DB, u *User) (*UserResponse, *gz.ErrMsg) {
	// Sanity check: Make sure that the identity (JWT) is not already used by an
	// active user.
	aUser, em := ByIdentity(tx, *u.Identity, false)
	if em != nil && em.ErrCode != gz.ErrorAuthNoUser {
		return nil, em
	}
	if aUser != nil {
		return nil, gz.NewErrorMessage(gz.ErrorResourceExists)
	}
	// Sanity check: Make sure that the claimed username was not already used,
	// even by removed users.
	ownerName, em := OwnerByName(tx, *u.Username, true)
	if em != nil && em.ErrCode != gz.ErrorUserUnknown {
		return nil, em
	}
	if ownerName != nil {
		return nil, gz.NewErrorMessage(gz.ErrorResourceExists)
	}

	// Add the user to the database.
	// Note: we also need to add (before) a row to UniqueOwners
	owner := UniqueOwner{Name: u.Username}
	if err := tx.Create(&owner).Create(&u).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}

	ur := CreateUserResponse(tx, u, u)
	gz.LoggerFromContext(ctx).Info("A new user has been created. Username=", *u.Username,
		" Email=", *u.Email)

	return &ur, nil
}

// VerifyOwner verifies that the given 'user' arg is the same as the 'owner'
// arg, or a system admin. Ownership of listings and likes is never shared.
func VerifyOwner(tx *gorm.DB, owner, user string,
	per permissions.Action) (bool, *gz.ErrMsg) {
	if owner != user && !globals.Permissions.IsSystemAdmin(user) {
		return false, gz.NewErrorMessage(gz.ErrorUnauthorized)
	}
	return true, nil
}
