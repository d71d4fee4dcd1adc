package models

import (
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Category struct {
	Id          bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string         `bson:"name" json:"name"`
	Slug        string         `bson:"slug" json:"slug"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	ParentId    *bson.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	SortOrder   int            `bson:"sortOrder" json:"sortOrder"`
	ImageUrl    string         `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	IsActive    bool           `bson:"isActive" json:"isActive"`
}

type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// BuildCategoryTree nests categories by their parent pointers. A node whose
// parent is missing, or whose ancestor chain loops back on itself, is emitted
// at the root instead of being recursed into; malformed data degrades to a
// flat listing rather than hanging the request.
func BuildCategoryTree(cats []Category) []*CategoryNode {
	nodes := make(map[bson.ObjectID]*CategoryNode, len(cats))
	ordered := make([]*CategoryNode, 0, len(cats))
	for i := range cats {
		n := &CategoryNode{Category: cats[i], Children: []*CategoryNode{}}
		nodes[cats[i].Id] = n
		ordered = append(ordered, n)
	}

	parentOf := func(n *CategoryNode) *CategoryNode {
		if n.ParentId == nil {
			return nil
		}
		return nodes[*n.ParentId]
	}

	roots := make([]*CategoryNode, 0)
	for _, n := range ordered {
		p := parentOf(n)
		if p == nil {
			roots = append(roots, n)
			continue
		}
		seen := map[bson.ObjectID]bool{n.Id: true}
		cyclic := false
		for a := p; a != nil; a = parentOf(a) {
			if seen[a.Id] {
				cyclic = true
				break
			}
			seen[a.Id] = true
		}
		if cyclic {
			roots = append(roots, n)
			continue
		}
		p.Children = append(p.Children, n)
	}

	sortCategoryNodes(roots)
	return roots
}

func sortCategoryNodes(nodes []*CategoryNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
	for _, n := range nodes {
		sortCategoryNodes(n.Children)
	}
}
