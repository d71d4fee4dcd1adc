package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Walnut Coffee Table", "walnut-coffee-table"},
		{"Café  Chair — Déluxe", "cafe-chair-deluxe"},
		{"  Étagère!!  ", "etagere"},
		{"100% Cotton Throw", "100-cotton-throw"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateSlug(tt.name), tt.name)
	}
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 20, ParseIntDefault("", 20))
	assert.Equal(t, 5, ParseIntDefault("5", 20))
	assert.Equal(t, 20, ParseIntDefault("abc", 20))
	assert.Equal(t, -3, ParseIntDefault("-3", 20))
}

func TestParseBoolQuery(t *testing.T) {
	b, err := ParseBoolQuery("")
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = ParseBoolQuery("true")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, *b)

	_, err = ParseBoolQuery("maybe")
	assert.Error(t, err)
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "**** **** **** 4242", MaskCardNumber("4242424242424242"))
	assert.Equal(t, "**** **** **** 1111", MaskCardNumber("4111-1111-1111-1111"))
	assert.Equal(t, "****", MaskCardNumber("12"))
}

func TestMergeImageUrls(t *testing.T) {
	old := []string{"a.jpg", "b.jpg", "c.jpg"}

	merged := MergeImageUrls(old, []string{"b.jpg"}, []string{"d.jpg", "a.jpg"})
	assert.Equal(t, []string{"a.jpg", "c.jpg", "d.jpg"}, merged)

	// nothing removed or added
	assert.Equal(t, old, MergeImageUrls(old, nil, nil))
}

func TestIntersectStrings(t *testing.T) {
	assert.Equal(t, []string{"b", "c"},
		IntersectStrings([]string{"a", "b", "c"}, []string{"c", "b", "x"}))
	assert.Empty(t, IntersectStrings([]string{"a"}, nil))
}

func TestStringsToObjectIDs(t *testing.T) {
	ids, err := StringsToObjectIDs([]string{"507f1f77bcf86cd799439011"})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "507f1f77bcf86cd799439011", ids[0].Hex())

	_, err = StringsToObjectIDs([]string{"not-an-id"})
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "s3cret-pass"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestHashToken(t *testing.T) {
	h := HashToken("refresh-token-a")

	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("refresh-token-a"))
	assert.NotEqual(t, h, HashToken("refresh-token-b"))
	assert.NotContains(t, h, "refresh-token-a", "stored form must not expose the token")
}
