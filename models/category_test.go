package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func cat(name string, sortOrder int, parent *bson.ObjectID) Category {
	return Category{
		Id:        bson.NewObjectID(),
		Name:      name,
		Slug:      name,
		SortOrder: sortOrder,
		ParentId:  parent,
		IsActive:  true,
	}
}

func TestBuildCategoryTreeNesting(t *testing.T) {
	furniture := cat("furniture", 1, nil)
	tables := cat("tables", 1, &furniture.Id)
	chairs := cat("chairs", 2, &furniture.Id)
	coffee := cat("coffee-tables", 1, &tables.Id)
	decor := cat("decor", 2, nil)

	roots := BuildCategoryTree([]Category{decor, chairs, coffee, furniture, tables})

	require.Len(t, roots, 2)
	assert.Equal(t, "furniture", roots[0].Name)
	assert.Equal(t, "decor", roots[1].Name)

	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "tables", roots[0].Children[0].Name)
	assert.Equal(t, "chairs", roots[0].Children[1].Name)

	require.Len(t, roots[0].Children[0].Children, 1)
	assert.Equal(t, "coffee-tables", roots[0].Children[0].Children[0].Name)
}

func TestBuildCategoryTreeSortsByOrderThenName(t *testing.T) {
	b := cat("banana", 2, nil)
	a := cat("apple", 2, nil)
	z := cat("zebra", 1, nil)

	roots := BuildCategoryTree([]Category{b, a, z})

	require.Len(t, roots, 3)
	assert.Equal(t, "zebra", roots[0].Name)
	assert.Equal(t, "apple", roots[1].Name)
	assert.Equal(t, "banana", roots[2].Name)
}

func TestBuildCategoryTreeMissingParentBecomesRoot(t *testing.T) {
	ghost := bson.NewObjectID()
	orphan := cat("orphan", 1, &ghost)

	roots := BuildCategoryTree([]Category{orphan})

	require.Len(t, roots, 1)
	assert.Equal(t, "orphan", roots[0].Name)
	assert.Empty(t, roots[0].Children)
}

func TestBuildCategoryTreeCycleTerminates(t *testing.T) {
	a := cat("a", 1, nil)
	b := cat("b", 2, nil)
	a.ParentId = &b.Id
	b.ParentId = &a.Id

	roots := BuildCategoryTree([]Category{a, b})

	// both sides of the loop surface as roots instead of recursing forever
	require.Len(t, roots, 2)
	assert.Equal(t, "a", roots[0].Name)
	assert.Equal(t, "b", roots[1].Name)
}

func TestBuildCategoryTreeSelfParent(t *testing.T) {
	c := cat("self", 1, nil)
	c.ParentId = &c.Id

	roots := BuildCategoryTree([]Category{c})

	require.Len(t, roots, 1)
	assert.Empty(t, roots[0].Children)
}

func TestBuildCategoryTreeEmpty(t *testing.T) {
	assert.Empty(t, BuildCategoryTree(nil))
}
