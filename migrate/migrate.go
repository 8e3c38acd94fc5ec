// Package migrate implements a set of migration scripts that are run when the
// server starts. Each script is gated behind its own environment variable, so
// that expensive migrations only run when explicitly requested.
package migrate

import (
	"context"
	"log"
	"strconv"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/homefeed/listings-server/bundles/listings"
	"github.com/homefeed/listings-server/globals"
	"github.com/homefeed/listings-server/permissions"
	"github.com/jinzhu/gorm"
)

// RecomputeLikes iterates all listings and resets their like counter based on
// the number of rows in the listing_likes table. It only runs when the
// HOMEFEED_MIGRATE_RESET_LIKES env var is set to true.
func RecomputeLikes(ctx context.Context, db *gorm.DB) {
	migrate, _ := gz.ReadEnvVar("HOMEFEED_MIGRATE_RESET_LIKES")
	if value, err := strconv.ParseBool(migrate); err != nil || !value {
		if err != nil {
			log.Printf("Error parsing HOMEFEED_MIGRATE_RESET_LIKES. Got value: %s. Error: %s", migrate, err)
		}
		return
	}
	log.Println("[MIGRATION] Running 'Recompute Likes' migration script")
	tx := db.Begin()

	if em := (&listings.Service{}).ComputeAllCounters(tx); em != nil {
		tx.Rollback()
		log.Fatal("[MIGRATION] Error while recomputing likes", em.BaseError)
	}

	if err := tx.Commit().Error; err != nil {
		log.Fatal("[MIGRATION] Error while recomputing likes", err)
	}
	log.Println("[MIGRATION] Successfully finished 'Recompute Likes' migration script")
}

// CasbinPermissions adds write permissions to owners of existent listings.
// NOTE: This script is expected to be run just once on each server.
func CasbinPermissions(ctx context.Context, db *gorm.DB) {
	migrate, _ := gz.ReadEnvVar("HOMEFEED_MIGRATE_CASBIN")
	if value, err := strconv.ParseBool(migrate); err != nil || !value {
		if err != nil {
			log.Printf("Error parsing HOMEFEED_MIGRATE_CASBIN. Got value: %s. Error: %s", migrate, err)
		}
		return
	}
	log.Println("[MIGRATION] Running Casbin Permissions migration script")
	q := db

	var listingList listings.Listings
	if err := q.Model(&listings.Listing{}).Unscoped().Find(&listingList).Error; err != nil {
		log.Fatal("[MIGRATION] Error finding listings to add permissions", err)
	}
	for _, listing := range listingList {
		// add write permissions to the owner
		globals.Permissions.AddPermission(*listing.Owner, *listing.UUID, permissions.Write)
	}

	log.Println("[MIGRATION] Successfully finished Casbin Permissions migration script")
}
