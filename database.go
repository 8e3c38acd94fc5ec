package main

// Import this file's dependencies
import (
	"context"
	"log"

	"github.com/gazebo-web/gz-go/v7"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gosimple/slug"
	"github.com/homefeed/listings-server/bundles/category"
	"github.com/homefeed/listings-server/bundles/listings"
	"github.com/homefeed/listings-server/bundles/users"
	"github.com/homefeed/listings-server/globals"
	"github.com/jinzhu/gorm"
)

// DBMigrate auto migrates database tables
func DBMigrate(ctx context.Context, db *gorm.DB) {
	// Note about Migration from GORM doc: http://jinzhu.me/gorm/database.html#migration
	//
	// WARNING: AutoMigrate will ONLY create tables, missing columns and missing indexes,
	// and WON'T change existing column's type or delete unused columns to protect your data.
	//

	if db != nil {
		db.AutoMigrate(
			&category.Category{},
			&gz.AccessToken{},
			&users.UniqueOwner{},
			&users.User{},
			&listings.Listing{},
			&listings.ListingLike{},
			globals.Permissions.DBTable(),
		)
	}
}

// DBDropTables drops all tables from DB. Used by tests.
func DBDropTables(ctx context.Context, db *gorm.DB) {
	if db != nil {
		// First remove added FKs
		db.Model(&listings.Listing{}).RemoveForeignKey("owner", "unique_owners(name)")
		db.Model(&users.User{}).RemoveForeignKey("username", "unique_owners(name)")
		// IMPORTANT NOTE: DROP TABLE order is important, due to FKs
		db.DropTableIfExists(
			&listings.ListingLike{},
			&listings.Listing{},
			&users.User{},
			&users.UniqueOwner{},
			&gz.AccessToken{},
			&category.Category{},
			globals.Permissions.DBTable(),
		)
		// Now also remove many_to_many tables, because they are not automatically removed.
		db.DropTableIfExists("listing_categories")
	}
}

// CategoryDesc is used by DBAddDefaultData.
type CategoryDesc struct {
	name     string
	children []CategoryDesc
}

// DBAddDefaultData adds default data. Eg. the default property types.
func DBAddDefaultData(ctx context.Context, db *gorm.DB) {

	if db != nil {
		defaultCategories := []CategoryDesc{
			{"Apartments", []CategoryDesc{}},
			{"Townhomes", []CategoryDesc{}},
			{"Homes", []CategoryDesc{}},
			{"Condos", []CategoryDesc{}},
			{"Duplexes", []CategoryDesc{}},
			{"Studios", []CategoryDesc{}},
		}
		createCategories(db, defaultCategories, nil)
	}
}

func createCategories(db *gorm.DB, categories []CategoryDesc, parentId *uint) {
	for _, c := range categories {
		newSlug := slug.Make(c.name)
		cat := category.Category{Name: &c.name, Slug: &newSlug, ParentID: parentId}
		// This Create will return error if the value already exist.
		db.Create(&cat)
		var record category.Category
		db.Where("name = ?", c.name).First(&record)
		createCategories(db, c.children, &record.ID)
	}
}

// DBAddCustomIndexes allows application to add custom indexes that cannot be added automatically
// by GORM.
func DBAddCustomIndexes(ctx context.Context, db *gorm.DB) {
	// TIP: command to check for existing foreign keys in db:
	// SELECT TABLE_NAME, COLUMN_NAME, CONSTRAINT_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE WHERE REFERENCED_TABLE_SCHEMA = 'homefeed';
	db.Model(&users.User{}).AddForeignKey("username", "unique_owners(name)", "RESTRICT", "RESTRICT")
	db.Model(&listings.Listing{}).AddForeignKey("owner", "unique_owners(name)", "RESTRICT", "RESTRICT")

	// Add the fulltext index used by the `q` search parameter
	found, err := indexIsPresent(db, "listings", "listings_fulltext")
	if err != nil {
		gz.LoggerFromContext(ctx).Critical("Error with DB while checking index", err)
		log.Fatal("Error with DB while checking index", err)
		return
	}
	if !found {
		db.Exec("ALTER TABLE listings ADD FULLTEXT listings_fulltext (title, description, location);")
	}
	// TIP: You can check created indexes by executing in mysql: `show index from listings;`
}

// indexIsPresent returns true if the index with name idxName already exists in the given table
func indexIsPresent(db *gorm.DB, table string, idxName string) (bool, error) {
	// Raw SQL
	rows, err := db.Raw("select * from information_schema.statistics where table_schema=database() and table_name=? and index_name=?;",
		table, idxName).Rows() //(*sql.Rows, error)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), nil
}
