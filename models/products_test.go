package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestDiscount(t *testing.T) {
	assert.Equal(t, 25, Product{Price: 75, OriginalPrice: 100}.Discount())
	assert.Equal(t, 33, Product{Price: 20, OriginalPrice: 30}.Discount())

	// not discounted
	assert.Equal(t, 0, Product{Price: 100, OriginalPrice: 100}.Discount())
	assert.Equal(t, 0, Product{Price: 120, OriginalPrice: 100}.Discount())
	assert.Equal(t, 0, Product{Price: 50}.Discount())
}

func TestHasReviewBy(t *testing.T) {
	alice := bson.NewObjectID()
	bob := bson.NewObjectID()

	p := Product{Reviews: []Review{{UserID: alice, Rating: 5}}}

	assert.True(t, p.HasReviewBy(alice))
	assert.False(t, p.HasReviewBy(bob))
	assert.False(t, Product{}.HasReviewBy(alice))
}

func TestRatingWith(t *testing.T) {
	p := Product{Rating: Rating{Average: 4, Count: 3}}

	r := p.RatingWith(5)
	assert.Equal(t, 4, r.Count)
	assert.InDelta(t, 4.25, r.Average, 1e-9)

	first := Product{}.RatingWith(3)
	assert.Equal(t, 1, first.Count)
	assert.InDelta(t, 3.0, first.Average, 1e-9)
}

func TestHeroStoreReplaceAndCopy(t *testing.T) {
	store := NewHeroStore()
	assert.NotEmpty(t, store.Slides())

	store.Replace([]HeroSlide{{ID: "fall", Title: "Fall sale", SortOrder: 1}})

	slides := store.Slides()
	assert.Len(t, slides, 1)
	assert.Equal(t, "fall", slides[0].ID)

	// mutating the returned slice must not leak into the store
	slides[0].Title = "changed"
	assert.Equal(t, "Fall sale", store.Slides()[0].Title)
}
