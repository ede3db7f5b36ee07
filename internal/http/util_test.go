package httpapi

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestPathSegments(t *testing.T) {
	assert.Nil(t, pathSegments("/admin/api/v1/tags", "/admin/api/v1/tags"))
	assert.Nil(t, pathSegments("/admin/api/v1/tags/", "/admin/api/v1/tags"))
	assert.Equal(t, []string{"5", "products"}, pathSegments("/admin/api/v1/tags/5/products", "/admin/api/v1/tags"))
}

func TestParseID(t *testing.T) {
	id, ok := parseID("12")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	for _, s := range []string{"", "0", "-3", "abc"} {
		_, ok := parseID(s)
		assert.False(t, ok, s)
	}
}
