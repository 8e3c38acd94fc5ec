package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/go-playground/form"
	"github.com/gorilla/mux"
	"github.com/homefeed/listings-server/bundles/users"
	"github.com/homefeed/listings-server/globals"
	"github.com/jinzhu/gorm"
	"gopkg.in/go-playground/validator.v9"
)

// NoResult is a middleware that adapts a gz.HandlerWithResult into a gz.Handler.
func NoResult(handler gz.HandlerWithResult) gz.Handler {
	return func(tx *gorm.DB, w http.ResponseWriter, r *http.Request) *gz.ErrMsg {
		_, em := handler(tx, w, r)
		return em
	}
}

// searchFnHandler defines the signature for handlers that accept
// search arguments and return a list of results.
// Arguments:
// owner: optional, for routes that start with a username. eg /{username}/listings.
// order: asc or desc (eg. order=)
// search: the search query in the router (eg. q=)
// user: the user requesting the operation (based on JWT).
type searchFnHandler func(owner *string, order, search string,
	user *users.User, tx *gorm.DB, w http.ResponseWriter,
	r *http.Request) (interface{}, *gz.ErrMsg)

// SearchHandler is a middleware handler that wraps a searchFnHandler and
// invokes it with the following extra arguments:
// - owner: got from the route, if any.
// - order and search: got from the URL Query parameters.
// - user: the user requesting the operation. Got from the JWT.
// It returns the list of resources from an owner.
func SearchHandler(handler searchFnHandler) gz.HandlerWithResult {
	return func(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
		// Get JWT user
		// it is ok for user to be nil
		user, ok, em := getUserFromJWT(tx, r)
		if !ok && (em.ErrCode != gz.ErrorAuthJWTInvalid &&
			em.ErrCode != gz.ErrorAuthNoUser) {
			return nil, &em
		}

		owner, order, search, valid, em2 := readListParams(r, tx)
		if !valid {
			return nil, em2
		}

		list, eMsg := handler(owner, order, search, user, tx, w, r)
		if eMsg != nil {
			return nil, eMsg
		}

		return list, nil
	}
}

type nameFn func(name string, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg)

// NameHandler is a middleware handler that wraps a nameFn function and
// invokes it with the following extra arguments:
// - name: the name got from the route.
// - user: the user requesting the operation. Can be nil. Got from the JWT.
// Note: if the failIfNoUser is true , this handler will return errors if the JWT
// is invalid or does not exist in DB. Otherwise, if false, the user will be nil.
// It returns the result from invoking the inner handler.
func NameHandler(nameArg string, failIfNoUser bool,
	handler nameFn) gz.HandlerWithResult {

	return func(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
		// Extract the user associated with the JWT, if any.
		user, ok, errMsg := getUserFromJWT(tx, r)
		if !ok && ((errMsg.ErrCode != gz.ErrorAuthJWTInvalid &&
			errMsg.ErrCode != gz.ErrorAuthNoUser) || failIfNoUser) {
			return nil, &errMsg
		}

		// Get the resource name
		params := mux.Vars(r)
		name, valid := params[nameArg]
		// If the name does not exist
		if !valid {
			return nil, gz.NewErrorMessage(gz.ErrorNameWrongFormat)
		}

		result, em := handler(name, user, tx, w, r)
		if em != nil {
			return nil, em
		}
		return result, nil
	}
}

// readListParams is a helper function that reads the "owner", the "order" and "q"
// parameters used to get a list of resources.
// The order parameter can be asc or desc.
// The q parameter is the search query.
func readListParams(r *http.Request, tx *gorm.DB) (owner *string, order, search string, valid bool, em *gz.ErrMsg) {
	// Get the requested owner, if any
	owner, valid, em = readOwner(tx, r, "username", true)
	if !valid && em.ErrCode != gz.ErrorUserNotInRequest {
		// Return the error if it's different than ErrorUserNotInRequest
		return
	}
	// Get the parameters
	queryP := r.URL.Query()
	orderParam, ok := queryP["order"]
	if ok {
		order = orderParam[0]
	}
	sc, ok := queryP["q"]
	if ok {
		search = sc[0]
	}
	valid = true
	return
}

// readOwner returns the owner name based on the URI requested.
// param[in] The params key to look for.
// deleted[in] Whether to include deleted users in the search query.
func readOwner(tx *gorm.DB, r *http.Request, param string, deleted bool) (*string, bool, *gz.ErrMsg) {

	// Extract the owner from the request.
	params := mux.Vars(r)
	// Get the owner
	name, present := params[param]
	// If the "owner" key does not exist
	if !present {
		return nil, false, gz.NewErrorMessage(gz.ErrorUserNotInRequest)
	}

	owner, em := users.OwnerByName(tx, name, deleted)
	if em != nil {
		return nil, false, em
	}

	errMsg := gz.ErrorMessageOK()
	return owner.Name, true, &errMsg
}

// ParseStruct reads the http request and decodes sent values
// into the given struct. It uses the isForm bool to know if the values comes
// as "request.Form" values or as "request.Body".
// It also calls validator to validate the struct fields.
func ParseStruct(s interface{}, r *http.Request, isForm bool) *gz.ErrMsg {
	// TODO: stop using globals. Move to own packages.
	if isForm {
		if errs := globals.FormDecoder.Decode(s, r.Form); errs != nil {
			return gz.NewErrorMessageWithArgs(gz.ErrorFormInvalidValue, errs,
				getDecodeErrorsExtraInfo(errs))
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(s); err != nil {
			return gz.NewErrorMessageWithBase(gz.ErrorUnmarshalJSON, err)
		}
	}
	// Validate struct values
	if em := ValidateStruct(s); em != nil {
		return em
	}
	return nil
}

// ValidateStruct Validate struct values using golang validator.v9
func ValidateStruct(s interface{}) *gz.ErrMsg {
	if errs := globals.Validate.Struct(s); errs != nil {
		return gz.NewErrorMessageWithArgs(gz.ErrorFormInvalidValue, errs,
			getValidationErrorsExtraInfo(errs))
	}
	return nil
}

// Builds the ErrMsg extra info from the given DecodeErrors
func getDecodeErrorsExtraInfo(err error) []string {
	errs := err.(form.DecodeErrors)
	extra := make([]string, 0, len(errs))
	for field, er := range errs {
		extra = append(extra, fmt.Sprintf("Field: %s. %v", field, er.Error()))
	}
	return extra
}

// Builds the ErrMsg extra info from the given ValidationErrors
func getValidationErrorsExtraInfo(err error) []string {
	validationErrors := err.(validator.ValidationErrors)
	extra := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		extra = append(extra, fmt.Sprintf("%s:%v", fe.StructField(), fe.Value()))
	}
	return extra
}

// getUserFromJWT returns the User associated to the http request's JWT token.
// This function can return ErrorAuthJWTInvalid if the token cannot be
// read, or ErrorAuthNoUser no user with such identity exists in the DB.
func getUserFromJWT(tx *gorm.DB, r *http.Request) (*users.User, bool, gz.ErrMsg) {
	var user *users.User

	// Check if a Private-Token is used, which will supercede a JWT token.
	if token := r.Header.Get("Private-Token"); len(token) > 0 {
		var accessToken *gz.AccessToken
		var err *gz.ErrMsg
		if accessToken, err = gz.ValidateAccessToken(token, tx); err != nil {
			return nil, false, gz.ErrorMessage(gz.ErrorUnauthorized)
		}

		user = new(users.User)
		if err := tx.Where("id = ?", accessToken.UserID).First(user).Error; err != nil {
			return nil, false, *gz.NewErrorMessage(gz.ErrorUnauthorized)
		}
	} else {
		identity, valid := gz.GetUserIdentity(r)
		if !valid {
			return nil, false, gz.ErrorMessage(gz.ErrorAuthJWTInvalid)
		}

		var em *gz.ErrMsg
		user, em = users.ByIdentity(tx, identity, false)
		if em != nil {
			return nil, false, *em
		}
	}

	errMsg := gz.ErrorMessageOK()
	return user, true, errMsg
}
