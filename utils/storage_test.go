package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNameFromR2PublicURL(t *testing.T) {
	t.Setenv("R2_BUCKET", "velora-media")
	t.Setenv("R2_PUBLIC_DOMAIN", "https://media.velora.shop")

	url := r2PublicURL("categories/68b0/1756600000-abc.jpg")
	require.Equal(t, "https://media.velora.shop/velora-media/categories/68b0/1756600000-abc.jpg", url)

	obj, err := ObjectNameFromR2PublicURL(url)
	require.NoError(t, err)
	assert.Equal(t, "categories/68b0/1756600000-abc.jpg", obj)
}

func TestObjectNameFromR2PublicURLRejectsForeignURLs(t *testing.T) {
	t.Setenv("R2_BUCKET", "velora-media")

	_, err := ObjectNameFromR2PublicURL("https://media.velora.shop/other-bucket/x.jpg")
	assert.Error(t, err)

	_, err = ObjectNameFromR2PublicURL("https://media.velora.shop/velora-media/")
	assert.Error(t, err)
}
