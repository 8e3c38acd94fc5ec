// Package main HomeFeed Listings Server REST API
//
// This package provides a REST API to the HomeFeed listings server.
//
// Schemes: https
// Host: api.homefeed.app
// BasePath: /1.0
// Version: 1.0.0
// License: Apache 2.0
//
// swagger:meta
// go:generate swagger generate spec
package main

// Import this file's dependencies
import (
	"context"
	"flag"
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/go-playground/form"
	"github.com/homefeed/listings-server/globals"
	"github.com/homefeed/listings-server/migrate"
	"github.com/homefeed/listings-server/permissions"
	"github.com/joho/godotenv"
	"gopkg.in/go-playground/validator.v9"
)

// Impl note: we move this as a constant as it is used by tests.
const sysAdminForTest = "rootfortests"

/////////////////////////////////////////////////
/// Initialize this package
///
/// Environment variables:
///    HOMEFEED_DB_USERNAME : Mysql username
///    HOMEFEED_DB_PASSWORD : Mysql password
///    HOMEFEED_DB_ADDRESS  : Mysql address (host:port)
///    HOMEFEED_DB_NAME     : Mysql database name (such as "homefeed")
///    HOMEFEED_MEMCACHE_ADDRESS : Optional memcached address (host:port)
///    HOMEFEED_SYSTEM_ADMIN : Username of the system administrator
///    AUTH0_RSA256_PUBLIC_KEY : Auth0 public RSA 256 key
func init() {
	var err error
	var isGoTest bool
	var auth0RsaPublickey string

	// Load a local .env file, if present. Env vars already set take precedence.
	_ = godotenv.Load()

	verbosity := gz.VerbosityWarning
	if verbStr, verr := gz.ReadEnvVar("HOMEFEED_VERBOSITY"); verr == nil {
		verbosity, _ = strconv.Atoi(verbStr)
	}

	logStd := gz.ReadStdLogEnvVar()
	logger := gz.NewLogger("init", logStd, verbosity)
	logCtx := gz.NewContextWithLogger(context.Background(), logger)

	isGoTest = flag.Lookup("test.v") != nil

	// Get the auth0 credentials.
	if auth0RsaPublickey, err = gz.ReadEnvVar("AUTH0_RSA256_PUBLIC_KEY"); err != nil {
		logger.Info("Missing AUTH0_RSA256_PUBLIC_KEY env variable. Authentication will not work.")
	}

	globals.Server, err = gz.Init(auth0RsaPublickey, "", nil)
	// Create the main Router and set it to the server.
	// Note: here it is the place to define multiple APIs
	s := globals.Server
	mainRouter := gz.NewRouter()
	apiPrefix := "/" + globals.APIVersion
	r := mainRouter.PathPrefix(apiPrefix).Subrouter()
	s.ConfigureRouterWithRoutes(apiPrefix, r, routes)

	globals.Server.SetRouter(mainRouter)

	globals.Validate = initValidator()
	globals.FormDecoder = form.NewDecoder()

	// Optional memcached based cache for the feed query.
	if addr, merr := gz.ReadEnvVar("HOMEFEED_MEMCACHE_ADDRESS"); merr == nil && addr != "" {
		globals.QueryCache = memcache.New(addr)
	} else {
		logger.Info("No HOMEFEED_MEMCACHE_ADDRESS env variable set. Feed queries will always hit the DB.")
	}

	// initialize permissions
	// override sys admin for tests
	var sysAdmin string
	if isGoTest {
		sysAdmin = sysAdminForTest
	} else {
		sysAdmin, _ = gz.ReadEnvVar("HOMEFEED_SYSTEM_ADMIN")
	}
	if sysAdmin == "" {
		logger.Info("No HOMEFEED_SYSTEM_ADMIN environment variable set. " +
			"No system administrator role will be created")
	}
	globals.Permissions = &permissions.Permissions{}
	globals.Permissions.Init(globals.Server.Db, sysAdmin)

	if err != nil {
		logger.Error(err)
	} else {
		logger.Info("[application.go] Started using database: ",
			globals.Server.DbConfig.Name)

		// Migrate database tables
		DBMigrate(logCtx, globals.Server.Db)

		DBAddDefaultData(logCtx, globals.Server.Db)

		// After loading initial data, apply custom indexes. Eg: fulltext indexes
		DBAddCustomIndexes(logCtx, globals.Server.Db)
	}

	// Reset listings' Likes counters, if needed.
	migrate.RecomputeLikes(logCtx, globals.Server.Db)
	// Set casbin permissions for existing data
	migrate.CasbinPermissions(logCtx, globals.Server.Db)
}

func initValidator() *validator.Validate {
	validate := validator.New()
	InstallCustomValidators(validate)
	return validate
}

/////////////////////////////////////////////////
// Run the router and server
func main() {
	globals.Server.Run()
}
