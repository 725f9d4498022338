package api

import (
	"strconv"

	"github.com/fragmede/hnflat/internal/thread"
)

// Item represents an HN item (story, comment, job, poll, pollopt).
type Item struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Text        string `json:"text"`
	Parent      int    `json:"parent"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Dead        bool   `json:"dead"`
	Deleted     bool   `json:"deleted"`
	Kids        []int  `json:"kids"`
}

// Row converts a comment item to a thread row at the given depth.
func (it *Item) Row(depth int) thread.Row {
	return thread.Row{
		ID:         strconv.Itoa(it.ID),
		Author:     it.By,
		Paragraphs: thread.ParagraphsFromHTML(it.Text),
		Depth:      depth,
		Deleted:    it.Deleted,
		Dead:       it.Dead,
		Malformed:  it.Type != "comment" || (it.By == "" && !it.Deleted),
	}
}

// Post describes the submission this item heads.
func (it *Item) Post() thread.Post {
	p := thread.Post{
		ID:      strconv.Itoa(it.ID),
		Title:   it.Title,
		LinkURL: it.URL,
	}
	if p.Title == "" {
		p.Title = "Unknown"
	}
	return p
}
