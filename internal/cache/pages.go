package cache

import (
	"database/sql"
	"errors"
	"time"
)

// GetPage retrieves cached page HTML. Returns (html, isFresh, error).
// html is empty on cache miss.
func (d *DB) GetPage(url string, ttl time.Duration) (string, bool, error) {
	row := d.db.QueryRow(`SELECT html, fetched_at FROM pages WHERE url = ?`, url)

	var html string
	var fetchedAt int64
	err := row.Scan(&html, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return html, fresh(fetchedAt, ttl), nil
}

// PutPage stores page HTML in the cache.
func (d *DB) PutPage(url, html string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO pages (url, html, fetched_at) VALUES (?, ?, ?)`,
		url, html, time.Now().Unix())
	return err
}
