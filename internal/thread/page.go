package thread

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HN draws nesting with a spacer image this many pixels wide per level.
const indentWidth = 40

// RowsFromDocument extracts the comment rows of a discussion page in
// document order.
func RowsFromDocument(doc *goquery.Document) []Row {
	var rows []Row
	doc.Find("tr.athing.comtr").Each(func(_ int, s *goquery.Selection) {
		rows = append(rows, parseRow(s))
	})
	return rows
}

func parseRow(s *goquery.Selection) Row {
	r := Row{Depth: -1}
	r.ID, _ = s.Attr("id")

	if d, ok := rowDepth(s); ok {
		r.Depth = d
	} else {
		r.Malformed = true
	}

	comment := s.Find("div.comment").First()
	if comment.Length() == 0 {
		r.Malformed = true
		return r
	}

	text := comment.Find(".commtext").First()
	if text.Length() == 0 {
		// A header with no body is what HN shows for removed comments.
		if s.Find("span.comhead").Length() > 0 {
			r.Deleted = true
		} else {
			r.Malformed = true
		}
		return r
	}

	if text.HasClass("c73") {
		r.Flagged = true
	}
	switch strings.TrimSpace(text.Text()) {
	case "[dead]":
		r.Dead = true
	case "[deleted]", "[flagged]":
		r.Deleted = true
	}
	if r.Dead || r.Deleted {
		return r
	}

	author := strings.TrimSpace(s.Find("a.hnuser").First().Text())
	if author == "" {
		r.Malformed = true
		return r
	}
	r.Author = author
	r.Paragraphs = Paragraphs(text.Get(0))
	return r
}

func rowDepth(s *goquery.Selection) (int, bool) {
	ind := s.Find("td.ind").First()
	if ind.Length() == 0 {
		return 0, false
	}
	if v, ok := ind.Attr("indent"); ok {
		if d, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && d >= 0 {
			return d, true
		}
	}
	if v, ok := ind.Find("img").First().Attr("width"); ok {
		if w, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && w >= 0 {
			return w / indentWidth, true
		}
	}
	return 0, false
}

// Post is the submission a discussion page belongs to.
type Post struct {
	ID      string
	Title   string
	LinkURL string
}

// ParsePost reads the submission header of a discussion page.
func ParsePost(doc *goquery.Document) Post {
	p := Post{Title: "Unknown"}
	sub := doc.Find("tr.athing.submission").First()
	p.ID, _ = sub.Attr("id")

	link := sub.Find("span.titleline a").First()
	if link.Length() == 0 {
		return p
	}
	if t := strings.TrimSpace(link.Text()); t != "" {
		p.Title = t
	}
	p.LinkURL, _ = link.Attr("href")
	return p
}

// MoreLink returns the href of the "More" link HN adds to long threads, or
// "" on the last page.
func MoreLink(doc *goquery.Document) string {
	href, _ := doc.Find("a.morelink").First().Attr("href")
	return href
}
