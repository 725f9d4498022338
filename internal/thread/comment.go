package thread

// Comment is a single node in a discussion tree.
type Comment struct {
	ID         string
	Author     string
	Paragraphs []string
	Depth      int
	Children   []*Comment
}

// Forest is the ordered list of top-level comments of one discussion page.
type Forest []*Comment

// DescendantCount returns the number of comments below c, at any depth.
func (c *Comment) DescendantCount() int {
	n := len(c.Children)
	for _, child := range c.Children {
		n += child.DescendantCount()
	}
	return n
}

// IsLeaf reports whether c has no replies left.
func (c *Comment) IsLeaf() bool {
	return len(c.Children) == 0
}

// Clone returns a deep copy of the subtree rooted at c.
func (c *Comment) Clone() *Comment {
	cp := &Comment{
		ID:         c.ID,
		Author:     c.Author,
		Paragraphs: append([]string(nil), c.Paragraphs...),
		Depth:      c.Depth,
	}
	if len(c.Children) > 0 {
		cp.Children = make([]*Comment, len(c.Children))
		for i, child := range c.Children {
			cp.Children[i] = child.Clone()
		}
	}
	return cp
}

// Clone returns a deep copy of the forest.
func (f Forest) Clone() Forest {
	if f == nil {
		return nil
	}
	cp := make(Forest, len(f))
	for i, c := range f {
		cp[i] = c.Clone()
	}
	return cp
}

// Count returns the total number of comments in the forest.
func (f Forest) Count() int {
	n := len(f)
	for _, c := range f {
		n += c.DescendantCount()
	}
	return n
}

// Walk visits every comment in pre-order (document order). The walk stops
// early when fn returns false.
func (f Forest) Walk(fn func(c *Comment, parent *Comment) bool) {
	var walk func(list []*Comment, parent *Comment) bool
	walk = func(list []*Comment, parent *Comment) bool {
		for _, c := range list {
			if !fn(c, parent) {
				return false
			}
			if !walk(c.Children, c) {
				return false
			}
		}
		return true
	}
	walk(f, nil)
}
