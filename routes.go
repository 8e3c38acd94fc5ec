package main

import (
	"github.com/gazebo-web/gz-go/v7"
)

// ///////////////////////////////////////////////
// / Declare the routes. See also router.go
var routes = gz.Routes{

	//////////////
	// Listings //
	//////////////

	// Route for all listings
	gz.Route{
		Name:        "Listings",
		Description: "Information about all listings",
		URI:         "/listings",
		Headers:     gz.AuthHeadersOptional,
		Methods: gz.Methods{
			// swagger:route GET /listings listings listListings
			//
			// Get list of listings.
			//
			// Get the list of listings, newest first.
			// The route supports the 'order' parameter, with values 'asc' and
			// 'desc' (default: desc).
			// It also supports the 'q' parameter to perform a fulltext search on
			// listings title, description and location, and the 'category'
			// parameter to filter by property type slug.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: jsonListings
			gz.Method{
				Type:        "GET",
				Description: "Get all listings",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: ".json", Handler: gz.JSONListResult("Listings", SearchHandler(ListingList))},
					gz.FormatHandler{Extension: "", Handler: gz.JSONListResult("Listings", SearchHandler(ListingList))},
				},
			},
		},
		SecureMethods: gz.SecureMethods{
			// swagger:route POST /listings listings createListing
			//
			// Create listing
			//
			// Creates a new listing. The request body should contain the
			// following fields: 'title', 'price', 'location', 'image' (a URL),
			// 'rating' (number between 1 and 5). Optional: 'description' and
			// 'categories' (a comma separated list of property type names).
			// The listing owner will be retrieved from the passed JWT.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: dbListing
			gz.Method{
				Type:        "POST",
				Description: "Create a new listing",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(ListingCreate)},
				},
			},
		},
	},

	// Route that returns a list of listings from a user (ie. an 'owner')
	gz.Route{
		Name:        "OwnerListings",
		Description: "Information about listings belonging to an owner. The {username} URI option will limit the scope to the specified user. Otherwise all listings are considered.",
		URI:         "/{username}/listings",
		Headers:     gz.AuthHeadersOptional,
		Methods: gz.Methods{
			// swagger:route GET /{username}/listings listings listOwnerListings
			//
			// Get owner's listings
			//
			// Get the list of listings for the specified owner, newest first.
			// The route supports the 'order' parameter, with values 'asc' and
			// 'desc' (default: desc).
			// It also supports the 'q' parameter to perform a fulltext search on
			// listings title, description and location.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: jsonListings
			gz.Method{
				Type:        "GET",
				Description: "Get all listings of the specified user",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: ".json", Handler: gz.JSONListResult("Listings", SearchHandler(ListingList))},
					gz.FormatHandler{Extension: "", Handler: gz.JSONListResult("Listings", SearchHandler(ListingList))},
				},
			},
		},
		SecureMethods: gz.SecureMethods{},
	},

	// Route that handles a single listing
	gz.Route{
		Name:        "ListingIndex",
		Description: "Information about a single listing",
		URI:         "/listings/{listing}",
		Headers:     gz.AuthHeadersOptional,
		Methods: gz.Methods{
			// swagger:route GET /listings/{listing} listings singleListing
			//
			// Get a single listing
			//
			// Return the listing given its public id. If the requester is a
			// logged in user, the response also reports whether that user
			// liked the listing.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: dbListing
			gz.Method{
				Type:        "GET",
				Description: "Get a listing",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: ".json", Handler: gz.JSONResult(NameHandler("listing", false, ListingIndex))},
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(NameHandler("listing", false, ListingIndex))},
				},
			},
		},
		SecureMethods: gz.SecureMethods{
			// swagger:route DELETE /listings/{listing} listings deleteListing
			//
			// Delete a listing
			//
			// Deletes a listing given its public id. Only the owner or a
			// system admin can remove a listing.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200:
			gz.Method{
				Type:        "DELETE",
				Description: "Remove a listing",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(NameHandler("listing", true, ListingRemove))},
				},
			},
		},
	},

	// Route that handles likes to a listing
	gz.Route{
		Name:        "ListingLikes",
		Description: "Handles the likes of a listing.",
		URI:         "/listings/{listing}/likes",
		Headers:     gz.AuthHeadersOptional,
		Methods:     gz.Methods{},
		SecureMethods: gz.SecureMethods{
			// swagger:route POST /listings/{listing}/likes listings listingLikeCreate
			//
			// Like a listing
			//
			// Likes a listing on behalf of the JWT user. Liking an already
			// liked listing has no effect.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: Listing
			gz.Method{
				Type:        "POST",
				Description: "Like a listing",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: "", Handler: gz.Handler(NoResult(NameHandler("listing", true, ListingLikeCreate)))},
				},
			},
			// swagger:route DELETE /listings/{listing}/likes listings listingUnlike
			//
			// Unlike a listing
			//
			// Removes the like of the JWT user from a listing. Unliking a
			// listing that was not liked has no effect.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: Listing
			gz.Method{
				Type:        "DELETE",
				Description: "Unlike a listing",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: "", Handler: gz.Handler(NoResult(NameHandler("listing", true, ListingLikeRemove)))},
				},
			},
		},
	},

	// Route that returns a list of listings liked by a user.
	gz.Route{
		Name:        "ListingLikeList",
		Description: "Listings liked by a user.",
		URI:         "/{username}/likes/listings",
		Headers:     gz.AuthHeadersOptional,
		Methods: gz.Methods{
			// swagger:route GET /{username}/likes/listings listings listingLikeList
			//
			// Get listings liked by a user.
			//
			// Get the list of listings liked by the specified user, newest
			// first. Likes pointing at removed listings are not included.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: jsonListings
			gz.Method{
				Type:        "GET",
				Description: "Get all listings liked by the specified user",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: ".json", Handler: gz.JSONListResult("Listings", SearchHandler(ListingLikeList))},
					gz.FormatHandler{Extension: "", Handler: gz.JSONListResult("Listings", SearchHandler(ListingLikeList))},
				},
			},
		},
		SecureMethods: gz.SecureMethods{},
	},

	///////////
	// Users //
	///////////

	// Route that handles login
	gz.Route{
		Name:          "Login",
		Description:   "Login a user",
		URI:           "/login",
		Headers:       gz.AuthHeadersRequired,
		Methods:       gz.Methods{},
		SecureMethods: gz.SecureMethods{
			// swagger:route GET /login users loginUser
			//
			// Login user
			//
			// Returns information about the user associated with the passed JWT.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: UserResponse
			gz.Method{
				Type:        "GET",
				Description: "Login a user",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(Login)},
				},
			},
		},
	},

	// Route that handles user creation
	gz.Route{
		Name:        "Users",
		Description: "Route for all users",
		URI:         "/users",
		Headers:     gz.AuthHeadersRequired,
		Methods:     gz.Methods{},
		SecureMethods: gz.SecureMethods{
			// swagger:route POST /users users createUser
			//
			// Create user
			//
			// Creates a new user. Note: the user identity will be retrieved
			// from the passed JWT.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: UserResponse
			gz.Method{
				Type:        "POST",
				Description: "Create a new user",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(UserCreate)},
				},
			},
		},
	},

	// Route that handles a single user
	gz.Route{
		Name:        "UserIndex",
		Description: "Access information about a single user.",
		URI:         "/users/{username}",
		Headers:     gz.AuthHeadersOptional,
		Methods: gz.Methods{
			// swagger:route GET /users/{username} users singleUser
			//
			// Get a user
			//
			// Return a user given its username.
			// Only system admins and the user itself will see private fields.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: UserResponse
			gz.Method{
				Type:        "GET",
				Description: "Get user information",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: ".json", Handler: gz.JSONResult(NameHandler("username", false, UserIndex))},
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(NameHandler("username", false, UserIndex))},
				},
			},
		},
		SecureMethods: gz.SecureMethods{
			// swagger:route DELETE /users/{username} users deleteUser
			//
			// Delete a user
			//
			// Deletes a user given its username. A user can only remove itself.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: UserResponse
			gz.Method{
				Type:        "DELETE",
				Description: "Remove a user",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(NameHandler("username", true, UserRemove))},
				},
			},
			// swagger:route PATCH /users/{username} users updateUser
			//
			// Update a user
			//
			// Updates a user given its username. Fields that can be updated:
			// name and email. Display names already snapshotted into listings
			// are not rewritten.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: UserResponse
			gz.Method{
				Type:        "PATCH",
				Description: "Update a user",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(NameHandler("username", true, UserUpdate))},
				},
			},
		},
	},

	////////////////
	// Categories //
	////////////////

	// Route that handles property types
	gz.Route{
		Name:        "Categories",
		Description: "Route for all property types",
		URI:         "/categories",
		Headers:     gz.AuthHeadersOptional,
		Methods: gz.Methods{
			// swagger:route GET /categories categories listCategories
			//
			// Get list of property types.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: Categories
			gz.Method{
				Type:        "GET",
				Description: "Get all property types",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: ".json", Handler: gz.JSONResult(CategoryList)},
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(CategoryList)},
				},
			},
		},
		SecureMethods: gz.SecureMethods{
			// swagger:route POST /categories categories createCategory
			//
			// Create a property type
			//
			// Creates a new property type. Only system admins can do this.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: Category
			gz.Method{
				Type:        "POST",
				Description: "Create a new property type",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(CategoryCreate)},
				},
			},
		},
	},

	// Route that handles a single property type
	gz.Route{
		Name:        "Category",
		Description: "Route for a single property type",
		URI:         "/categories/{slug}",
		Headers:     gz.AuthHeadersRequired,
		Methods:     gz.Methods{},
		SecureMethods: gz.SecureMethods{
			// swagger:route PATCH /categories/{slug} categories updateCategory
			//
			// Update a property type
			//
			// Updates a property type. Only system admins can do this.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: Category
			gz.Method{
				Type:        "PATCH",
				Description: "Update a property type",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(CategoryUpdate)},
				},
			},
			// swagger:route DELETE /categories/{slug} categories deleteCategory
			//
			// Delete a property type
			//
			// Deletes a property type. Only system admins can do this.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: homefeedError
			//     200: Category
			gz.Method{
				Type:        "DELETE",
				Description: "Delete a property type",
				Handlers: gz.FormatHandlers{
					gz.FormatHandler{Extension: "", Handler: gz.JSONResult(CategoryDelete)},
				},
			},
		},
	},
}
