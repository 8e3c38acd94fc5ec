package main

import (
	"net/http"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/homefeed/listings-server/bundles/users"
	"github.com/jinzhu/gorm"
)

// Login returns information about the user associated with a JWT
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/login
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func Login(tx *gorm.DB, w http.ResponseWriter,
	r *http.Request) (interface{}, *gz.ErrMsg) {
	// Sanity check: Make sure that we have a user with the identity contained in
	// the JWT.
	identity, ok := gz.GetUserIdentity(r)
	if !ok {
		return nil, gz.NewErrorMessage(gz.ErrorAuthJWTInvalid)
	}

	return users.GetUserByIdentity(tx, identity)
}

// UserCreate creates a new user
// You can request this method with the following cURL request:
//
//	curl -k -H "Content-Type: application/json" -X POST -d '{"name":"John Doe",
//	  "username":"test-username", "email":"johndoe@example.com"}'
//	  https://localhost:4430/1.0/users
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func UserCreate(tx *gorm.DB, w http.ResponseWriter,
	r *http.Request) (interface{}, *gz.ErrMsg) {

	var u users.User
	if em := ParseStruct(&u, r, false); em != nil {
		return nil, em
	}

	if identity, ok := gz.GetUserIdentity(r); ok {
		u.Identity = &identity
	} else {
		return nil, gz.NewErrorMessage(gz.ErrorAuthJWTInvalid)
	}

	return users.CreateUser(r.Context(), tx, &u)
}

// UserIndex returns a single user
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/users/{username}
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
//
// Or you can use the following request for retrieving only the public data:
//
//	curl -k -X GET --url https://localhost:4430/1.0/users/{username}
func UserIndex(username string, jwtUser *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	user, em := users.ByUsername(tx, username, false)
	if em != nil {
		return nil, em
	}

	response := users.CreateUserResponse(tx, user, jwtUser)
	return response, nil
}

// UserRemove deletes a user.
// You can request this method with the following cURL request:
//
//	curl -k -X DELETE --url https://localhost:4430/1.0/users/{username}
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func UserRemove(username string, jwtUser *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	return users.RemoveUser(r.Context(), tx, username, jwtUser)
}

// UserUpdate updates a user.
// You can request this method with the following cURL request:
//
//	curl -k -X PATCH -d '{"name":"New name", "email": "myemail@user.me"}'
//	  --url https://localhost:4430/1.0/users/{username}
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func UserUpdate(username string, jwtUser *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	var uu users.UpdateUserInput
	if em := ParseStruct(&uu, r, false); em != nil {
		return nil, em
	}
	if uu.IsEmpty() {
		return nil, gz.NewErrorMessage(gz.ErrorFormInvalidValue)
	}

	return users.UpdateUser(r.Context(), tx, username, &uu, jwtUser)
}
