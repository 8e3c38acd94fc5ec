package globals

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/go-playground/form"
	"github.com/homefeed/listings-server/permissions"
	"gopkg.in/go-playground/validator.v9"
)

// TODO: remove as much as possible from globals

/////////////////////////////////////////////////
/// Define global variables here

// Server encapsulates database, router, and auth0
var Server *gz.Server

// APIVersion is route api version.
// See also routes and routers
// \todo: Add support for multiple versions.
var APIVersion = "1.0"

// Validate references the global structs validator.
// See https://github.com/go-playground/validator.
// We use a single instance of validator, as it caches struct info
var Validate *validator.Validate

// FormDecoder holds a reference to the global Form Decoder.
// See https://github.com/go-playground/form.
// We use a single instance of Decoder, as it caches struct info
var FormDecoder *form.Decoder

// Permissions manages permissions for users, roles and resources.
var Permissions *permissions.Permissions

// MaxCategoriesPerListing defines the maximum amount of property types that
// can be assigned to a listing.
var MaxCategoriesPerListing = 2

// QueryCache is used to store/cache results for common queries.
// It is nil when no memcache address was configured.
var QueryCache *memcache.Client
