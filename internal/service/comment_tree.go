package service

import (
	"sort"

	"github.com/newsroom-api/internal/models"
)

// BuildTree assembles a flat list of an article's comments into threads.
// Top-level comments come newest first; replies under each parent come oldest
// first. Only maxDepth levels of replies are kept below a top-level comment;
// anything deeper, and replies whose parent is missing, are dropped.
func BuildTree(flat []*models.Comment, maxDepth int) []*models.Comment {
	children := make(map[string][]*models.Comment)
	var roots []*models.Comment

	for _, c := range flat {
		node := *c
		node.Replies = nil
		if node.ParentID == nil {
			roots = append(roots, &node)
			continue
		}
		children[*node.ParentID] = append(children[*node.ParentID], &node)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})

	var attach func(parent *models.Comment, depth int)
	attach = func(parent *models.Comment, depth int) {
		if depth > maxDepth {
			return
		}
		replies := children[parent.ID]
		sort.SliceStable(replies, func(i, j int) bool {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		})
		parent.Replies = replies
		for _, r := range replies {
			attach(r, depth+1)
		}
	}

	for _, root := range roots {
		attach(root, 1)
	}

	if roots == nil {
		roots = []*models.Comment{}
	}
	return roots
}
