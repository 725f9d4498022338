package main

const (
	rootHelpShort = "Flatten Hacker News discussions into readable markdown"
	rootHelpLong  = `hnflat fetches one or more Hacker News discussions and renders each comment
tree as a nested markdown list. Every item reads "- @author [+N]: text", where
[+N] counts all replies below the comment.

Flagged, deleted and dead comments are dropped together with their replies.

With --condense RATE the lowest-weight leaf comments (short, reply-less ones
first) are removed one at a time until the rendered text is at most RATE of
its original length.

Results are written to hn.<id>.md unless --stdout, --output or --out-dir say
otherwise. Diagnostics go to standard error.`
	rootExample = `  hnflat "https://news.ycombinator.com/item?id=12345"
  hnflat 12345 --stdout
  hnflat 12345 67890 --out-dir ./hn-posts
  hnflat 12345 --cache-dir ~/.cache/hn
  hnflat 12345 --condense 0.5
  hnflat 12345 --no-frontmatter -o out.md`

	viewHelpShort = "Browse a discussion in the terminal"
	viewHelpLong  = `view flattens a single discussion the same way and opens it in a
full-screen pager with collapsible replies.`
	viewExample = `  hnflat view 12345
  hnflat view 12345 --condense 0.3`
)
