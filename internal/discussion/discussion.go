// Package discussion runs the whole flattening pipeline for HN threads:
// fetch, build the comment tree, condense, render.
package discussion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/fragmede/hnflat/internal/api"
	"github.com/fragmede/hnflat/internal/condense"
	"github.com/fragmede/hnflat/internal/render"
	"github.com/fragmede/hnflat/internal/thread"
)

// Source selects where comments are read from.
type Source string

const (
	// SourceHTML scrapes the discussion page, as a browser shows it.
	SourceHTML Source = "html"
	// SourceAPI walks the official JSON API item by item.
	SourceAPI Source = "api"
)

// ParseSource validates a source name.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceHTML, SourceAPI:
		return Source(s), nil
	}
	return "", fmt.Errorf("unknown source %q (want %q or %q)", s, SourceHTML, SourceAPI)
}

// Fetcher is the part of the HN client the pipeline needs.
type Fetcher interface {
	PageURL(id int) string
	GetPages(ctx context.Context, id int) ([]*goquery.Document, error)
	ThreadRows(ctx context.Context, id int) (*api.Item, []thread.Row, error)
}

// Options control how a discussion is turned into text.
type Options struct {
	Source Source
	// Condense is the target ratio; nil renders the full tree.
	Condense      *float64
	StepSize      int
	Frontmatter   bool
	MaxConcurrent int
}

// Result is one flattened discussion.
type Result struct {
	ItemID   int
	URL      string
	Post     thread.Post
	Forest   thread.Forest
	Stats    thread.Stats
	Condense *condense.Result
	Markdown string
}

// Runner flattens discussions.
type Runner struct {
	fetch Fetcher
	opts  Options
	log   *slog.Logger
}

// NewRunner returns a Runner reading through f.
func NewRunner(f Fetcher, opts Options, log *slog.Logger) *Runner {
	if opts.Source == "" {
		opts.Source = SourceHTML
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{fetch: f, opts: opts, log: log}
}

// Run flattens the discussion referenced by ref, an item id or URL.
func (r *Runner) Run(ctx context.Context, ref string) (*Result, error) {
	id, err := api.ParseItemID(ref)
	if err != nil {
		return nil, err
	}
	res := &Result{ItemID: id, URL: r.fetch.PageURL(id)}
	log := r.log.With("id", id)

	var rows []thread.Row
	switch r.opts.Source {
	case SourceAPI:
		root, apiRows, err := r.fetch.ThreadRows(ctx, id)
		if err != nil {
			return nil, err
		}
		res.Post, rows = root.Post(), apiRows
	default:
		docs, err := r.fetch.GetPages(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(docs) > 0 {
			res.Post = thread.ParsePost(docs[0])
		}
		for _, doc := range docs {
			rows = append(rows, thread.RowsFromDocument(doc)...)
		}
	}
	log.Debug("found comment rows", "rows", len(rows))

	if err := r.Flatten(res, rows); err != nil {
		return nil, err
	}
	log.Info("flattened discussion",
		"kept", res.Stats.Kept,
		"excluded", res.Stats.Excluded(),
		"orphaned", res.Stats.Orphaned)
	return res, nil
}

// Flatten builds, condenses and renders rows into res. res.Post and res.URL
// feed the front matter.
func (r *Runner) Flatten(res *Result, rows []thread.Row) error {
	res.Forest, res.Stats = thread.Build(rows)
	r.log.Debug("built comment tree",
		"rows", res.Stats.Rows,
		"kept", res.Stats.Kept,
		"flagged", res.Stats.Flagged,
		"deleted", res.Stats.Deleted,
		"dead", res.Stats.Dead,
		"malformed", res.Stats.Malformed,
		"empty", res.Stats.Empty,
		"orphaned", res.Stats.Orphaned)

	if r.opts.Condense != nil {
		cr, err := condense.Condense(res.Forest, condense.Options{
			Ratio:    *r.opts.Condense,
			StepSize: r.opts.StepSize,
			Logger:   r.log,
		})
		if err != nil {
			return err
		}
		res.Condense = &cr
		res.Forest = cr.Forest
	}

	var sb strings.Builder
	if r.opts.Frontmatter {
		fm, err := render.Frontmatter(render.NewMeta(res.Post, res.URL))
		if err != nil {
			return err
		}
		sb.WriteString(fm)
	}
	sb.WriteString(render.Markdown(res.Forest))
	res.Markdown = sb.String()
	return nil
}

// RunAll flattens several discussions concurrently. Each discussion is
// processed on its own; results keep the order of refs. The first error
// cancels the rest.
func (r *Runner) RunAll(ctx context.Context, refs []string) ([]*Result, error) {
	results := make([]*Result, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.opts.MaxConcurrent))
	for i, ref := range refs {
		g.Go(func() error {
			res, err := r.Run(gctx, ref)
			if err != nil {
				return fmt.Errorf("%s: %w", ref, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
