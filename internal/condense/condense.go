// Package condense shrinks a discussion by pruning its least valuable
// leaves until the rendered text falls to a target share of the original.
package condense

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"

	"github.com/fragmede/hnflat/internal/render"
	"github.com/fragmede/hnflat/internal/thread"
)

// ErrInvalidRatio is returned for a target ratio outside (0, 1].
var ErrInvalidRatio = errors.New("condense ratio must be in (0, 1]")

// Options control a Condense run.
type Options struct {
	// Ratio is the target rendered length as a share of the original.
	Ratio float64
	// StepSize is how many leaves go per iteration. Values below 1 mean 1.
	StepSize int
	// Trace, when set, is called after every iteration.
	Trace  func(Step)
	Logger *slog.Logger
}

// Step describes one pruning iteration.
type Step struct {
	Iteration int
	Removed   []Leaf
	Length    int
	Rate      float64
}

// Result is the outcome of Condense.
type Result struct {
	Forest         thread.Forest
	OriginalLength int
	FinalLength    int
	Removed        int
	Iterations     int
	// Reached is false when the forest ran out of leaves first.
	Reached bool
}

// Rate is FinalLength / OriginalLength, 1 for an empty discussion.
func (r Result) Rate() float64 {
	return rate(r.FinalLength, r.OriginalLength)
}

// Leaf is a removable comment together with its position.
type Leaf struct {
	Comment *thread.Comment
	Parent  *thread.Comment // nil for a top-level comment
	Depth   int
	Order   int // pre-order index in the forest it was collected from
	Weight  float64
}

// Weight is (descendants + 1) * rendered block length / 10. The block is
// measured at depth 0 so nesting never changes a comment's weight.
func Weight(c *thread.Comment) float64 {
	return float64(c.DescendantCount()+1) * float64(render.BlockLength(c, 0)) / 10
}

// Condense prunes a copy of f, lowest-weight leaf first, until its rendered
// length is at most opts.Ratio of the original. Ties go to the deeper leaf,
// then to the one earlier in document order. A comment is only ever removed
// once all of its replies are gone. The input forest is left untouched.
//
// An unreachable ratio is not an error: Condense removes what it can and
// reports Reached == false.
func Condense(f thread.Forest, opts Options) (Result, error) {
	if !(opts.Ratio > 0 && opts.Ratio <= 1) {
		return Result{}, ErrInvalidRatio
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	step := max(1, opts.StepSize)

	forest := f.Clone()
	original := render.Length(forest)
	res := Result{
		Forest:         forest,
		OriginalLength: original,
		FinalLength:    original,
	}
	log.Debug("condensing", "original_length", original, "target_rate", opts.Ratio, "step_size", step)

	if original == 0 {
		res.Reached = true
		return res, nil
	}

	for {
		r := rate(res.FinalLength, original)
		if r <= opts.Ratio {
			res.Reached = true
			break
		}

		leaves := Leaves(res.Forest)
		if len(leaves) == 0 {
			log.Debug("no more leaves to remove", "rate", r)
			break
		}
		sortLeaves(leaves)

		victims := leaves[:min(step, len(leaves))]
		for _, l := range victims {
			res.Forest = remove(res.Forest, l)
		}
		res.Removed += len(victims)
		res.Iterations++
		res.FinalLength = render.Length(res.Forest)

		log.Debug("condense iteration",
			"iteration", res.Iterations,
			"removed", len(victims),
			"length", res.FinalLength,
			"rate", rate(res.FinalLength, original))
		if opts.Trace != nil {
			opts.Trace(Step{
				Iteration: res.Iterations,
				Removed:   victims,
				Length:    res.FinalLength,
				Rate:      rate(res.FinalLength, original),
			})
		}
	}

	log.Info("condensed discussion",
		"removed", res.Removed,
		"iterations", res.Iterations,
		"rate", res.Rate(),
		"reached", res.Reached)
	return res, nil
}

// Leaves returns every current leaf of f in document order.
func Leaves(f thread.Forest) []Leaf {
	var (
		leaves []Leaf
		order  int
	)
	var walk func(list []*thread.Comment, parent *thread.Comment, depth int)
	walk = func(list []*thread.Comment, parent *thread.Comment, depth int) {
		for _, c := range list {
			if c.IsLeaf() {
				leaves = append(leaves, Leaf{
					Comment: c,
					Parent:  parent,
					Depth:   depth,
					Order:   order,
					Weight:  Weight(c),
				})
			}
			order++
			walk(c.Children, c, depth+1)
		}
	}
	walk(f, nil, 0)
	return leaves
}

func sortLeaves(leaves []Leaf) {
	slices.SortFunc(leaves, func(a, b Leaf) int {
		if c := cmp.Compare(a.Weight, b.Weight); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Depth, a.Depth); c != 0 {
			return c
		}
		return cmp.Compare(a.Order, b.Order)
	})
}

func remove(f thread.Forest, l Leaf) thread.Forest {
	drop := func(c *thread.Comment) bool { return c == l.Comment }
	if l.Parent == nil {
		return slices.DeleteFunc(f, drop)
	}
	l.Parent.Children = slices.DeleteFunc(l.Parent.Children, drop)
	return f
}

func rate(current, original int) float64 {
	if original == 0 {
		return 1
	}
	return float64(current) / float64(original)
}
