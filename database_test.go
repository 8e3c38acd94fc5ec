package main

import (
	"errors"
	"testing"

	mocket "github.com/Selvatico/go-mocket"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMockDb registers the mock DB driver and returns a gorm connection
// backed by it.
func setupMockDb(t *testing.T) *gorm.DB {
	mocket.Catcher.Register()
	mocket.Catcher.Logging = false
	db, err := gorm.Open(mocket.DRIVER_NAME, "any_string")
	require.NoError(t, err)
	mocket.Catcher.Reset()
	return db
}

func TestIndexIsPresent(t *testing.T) {
	db := setupMockDb(t)

	// No matching row: the index does not exist yet.
	found, err := indexIsPresent(db, "listings", "listings_fulltext")
	require.NoError(t, err)
	assert.False(t, found)

	indexReply := []map[string]interface{}{{"table_name": "listings", "index_name": "listings_fulltext"}}
	mocket.Catcher.NewMock().WithQuery("select * from information_schema.statistics").
		WithReply(indexReply)

	found, err = indexIsPresent(db, "listings", "listings_fulltext")
	require.NoError(t, err)
	assert.True(t, found)
}

// A failing statistics query must surface as an error, not a panic.
func TestIndexIsPresentQueryError(t *testing.T) {
	db := setupMockDb(t)

	mocket.Catcher.NewMock().WithQuery("select * from information_schema.statistics").
		WithError(errors.New("information_schema unavailable"))

	found, err := indexIsPresent(db, "listings", "listings_fulltext")
	assert.Error(t, err)
	assert.False(t, found)
}
