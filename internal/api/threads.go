package api

import (
	"context"
	"fmt"

	"github.com/fragmede/hnflat/internal/thread"
)

// ThreadRows walks the comment tree below an item through the JSON API,
// one level per batch, and flattens it in pre-order. It returns the root
// item along with the rows. Comments that failed to load come back as
// malformed rows so their subtree is dropped.
func (c *Client) ThreadRows(ctx context.Context, id int) (*Item, []thread.Row, error) {
	root, err := c.GetItem(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching item %d: %w", id, err)
	}

	items := make(map[int]*Item)
	level := root.Kids
	for len(level) > 0 {
		got, err := c.BatchGetItems(ctx, level)
		if err != nil {
			return nil, nil, fmt.Errorf("fetching comments of %d: %w", id, err)
		}
		var next []int
		for i, item := range got {
			if item == nil {
				continue
			}
			items[level[i]] = item
			next = append(next, item.Kids...)
		}
		level = next
	}

	var rows []thread.Row
	var walk func(ids []int, depth int)
	walk = func(ids []int, depth int) {
		for _, kid := range ids {
			item, ok := items[kid]
			if !ok {
				rows = append(rows, thread.Row{Depth: depth, Malformed: true})
				continue
			}
			rows = append(rows, item.Row(depth))
			walk(item.Kids, depth+1)
		}
	}
	walk(root.Kids, 0)

	c.log.Debug("walked thread", "id", id, "items", len(items), "rows", len(rows))
	return root, rows, nil
}
