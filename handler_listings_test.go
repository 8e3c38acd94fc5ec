package main

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingFormValues returns a valid set of listing fields as form values.
func listingFormValues() url.Values {
	return url.Values{
		"title":    {"Modern Loft"},
		"price":    {"$1600"},
		"location": {"Austin, TX"},
		"image":    {"https://example.org/loft.jpg"},
		"rating":   {"4"},
	}
}

func TestListingCreateInputJSON(t *testing.T) {
	body := `{"title":"Modern Loft", "price":"$1600", "location":"Austin, TX",
	  "image":"https://example.org/loft.jpg", "rating":4}`
	req, err := http.NewRequest("POST", "/1.0/listings", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	cl, em := listingCreateInput(req)
	require.Nil(t, em)
	assert.Equal(t, "Modern Loft", cl.Title)
	assert.Equal(t, "$1600", cl.Price)
	assert.Equal(t, 4, cl.Rating)
}

func TestListingCreateInputForm(t *testing.T) {
	req, err := http.NewRequest("POST", "/1.0/listings",
		strings.NewReader(listingFormValues().Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	cl, em := listingCreateInput(req)
	require.Nil(t, em)
	assert.Equal(t, "Modern Loft", cl.Title)
	assert.Equal(t, "Austin, TX", cl.Location)
	assert.Equal(t, "https://example.org/loft.jpg", cl.ImageURL)
	assert.Equal(t, 4, cl.Rating)
}

func TestListingCreateInputMultipartForm(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, values := range listingFormValues() {
		require.NoError(t, writer.WriteField(field, values[0]))
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest("POST", "/1.0/listings", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	cl, em := listingCreateInput(req)
	require.Nil(t, em)
	assert.Equal(t, "Modern Loft", cl.Title)
	assert.Equal(t, "$1600", cl.Price)
	assert.Equal(t, 4, cl.Rating)
}

// Form submissions go through the same struct validation as JSON bodies.
func TestListingCreateInputFormInvalidRating(t *testing.T) {
	values := listingFormValues()
	values.Set("rating", "9")
	req, err := http.NewRequest("POST", "/1.0/listings",
		strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, em := listingCreateInput(req)
	require.NotNil(t, em)
	assert.Equal(t, gz.ErrorFormInvalidValue, em.ErrCode)
}
