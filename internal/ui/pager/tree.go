package pager

import "github.com/fragmede/hnflat/internal/thread"

// FlatComment is a comment flattened from the tree for display.
type FlatComment struct {
	Comment     *thread.Comment
	Depth       int
	IsCollapsed bool
	ChildCount  int
}

// CollapseState tracks collapsed comments.
type CollapseState map[*thread.Comment]bool

// FlattenTree converts the forest into a flat list for display, skipping
// the replies of collapsed comments.
func FlattenTree(forest thread.Forest, cs CollapseState) []FlatComment {
	var result []FlatComment

	var walk func(c *thread.Comment, depth int)
	walk = func(c *thread.Comment, depth int) {
		result = append(result, FlatComment{
			Comment:     c,
			Depth:       depth,
			IsCollapsed: cs[c],
			ChildCount:  c.DescendantCount(),
		})
		if cs[c] {
			return
		}
		for _, child := range c.Children {
			walk(child, depth+1)
		}
	}

	for _, c := range forest {
		walk(c, 0)
	}
	return result
}

// FindParentIndex returns the index of the parent comment in the flat list.
func FindParentIndex(comments []FlatComment, currentIdx int) int {
	if currentIdx < 0 || currentIdx >= len(comments) {
		return -1
	}
	depth := comments[currentIdx].Depth
	for i := currentIdx - 1; i >= 0; i-- {
		if comments[i].Depth < depth {
			return i
		}
	}
	return -1
}

// FindNextSiblingIndex returns the index of the next comment at the same depth.
func FindNextSiblingIndex(comments []FlatComment, currentIdx int) int {
	if currentIdx < 0 || currentIdx >= len(comments) {
		return -1
	}
	depth := comments[currentIdx].Depth
	for i := currentIdx + 1; i < len(comments); i++ {
		if comments[i].Depth < depth {
			return -1 // Went up in tree, no more siblings.
		}
		if comments[i].Depth == depth {
			return i
		}
	}
	return -1
}
