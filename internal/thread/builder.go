package thread

// Row is one comment as it appears in a depth-ordered listing: the page's
// flat sequence of comment rows, or the API walk flattened in pre-order.
type Row struct {
	ID         string
	Author     string
	Paragraphs []string
	Depth      int // -1 when the source did not say

	Flagged   bool
	Deleted   bool
	Dead      bool
	Malformed bool
}

// ExcludeReason names why a row was left out of the tree.
type ExcludeReason string

const (
	ReasonNone      ExcludeReason = ""
	ReasonFlagged   ExcludeReason = "flagged"
	ReasonDeleted   ExcludeReason = "deleted"
	ReasonDead      ExcludeReason = "dead"
	ReasonMalformed ExcludeReason = "malformed"
	ReasonEmpty     ExcludeReason = "empty"
)

// Exclusion returns the reason r must not enter the tree, or ReasonNone.
func (r Row) Exclusion() ExcludeReason {
	switch {
	case r.Malformed:
		return ReasonMalformed
	case r.Flagged:
		return ReasonFlagged
	case r.Deleted:
		return ReasonDeleted
	case r.Dead:
		return ReasonDead
	case len(r.Paragraphs) == 0:
		return ReasonEmpty
	}
	return ReasonNone
}

// Stats summarizes a Build pass. Diagnostic only.
type Stats struct {
	Rows      int
	Kept      int
	Flagged   int
	Deleted   int
	Dead      int
	Malformed int
	Empty     int
	// Orphaned counts rows dropped because an ancestor was excluded.
	Orphaned int
}

// Excluded returns the number of rows excluded for their own sake.
func (s Stats) Excluded() int {
	return s.Flagged + s.Deleted + s.Dead + s.Malformed + s.Empty
}

func (s *Stats) count(reason ExcludeReason) {
	switch reason {
	case ReasonFlagged:
		s.Flagged++
	case ReasonDeleted:
		s.Deleted++
	case ReasonDead:
		s.Dead++
	case ReasonMalformed:
		s.Malformed++
	case ReasonEmpty:
		s.Empty++
	}
}

// Build turns depth-ordered rows into a forest in one pass.
//
// An excluded row takes its whole subtree with it: every following row that
// is deeper than the excluded one is skipped, until a row at the excluded
// row's depth or shallower shows up. Kept rows attach to the nearest
// shallower kept row on the ancestor stack.
func Build(rows []Row) (Forest, Stats) {
	type frame struct {
		c     *Comment
		depth int // depth as given by the row, not the tree depth
	}

	var (
		forest Forest
		stats  Stats
		stack  []frame
	)
	skipDepth := -1

	for _, r := range rows {
		stats.Rows++

		depth := r.Depth
		if depth < 0 {
			// Unknown depth: assume a reply to the current ancestor.
			depth = 0
			if len(stack) > 0 {
				depth = stack[len(stack)-1].depth + 1
			}
		}

		if skipDepth >= 0 {
			if depth > skipDepth {
				stats.Orphaned++
				continue
			}
			skipDepth = -1
		}

		if reason := r.Exclusion(); reason != ReasonNone {
			stats.count(reason)
			skipDepth = depth
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}

		c := &Comment{
			ID:         r.ID,
			Author:     r.Author,
			Paragraphs: r.Paragraphs,
			Depth:      len(stack),
		}
		if len(stack) > 0 {
			parent := stack[len(stack)-1].c
			parent.Children = append(parent.Children, c)
		} else {
			forest = append(forest, c)
		}
		stack = append(stack, frame{c: c, depth: depth})
		stats.Kept++
	}

	return forest, stats
}
