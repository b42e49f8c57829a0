package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/happyhackingspace/rustsub/features"
)

// PostStore persists collected posts in SQLite.
type PostStore struct {
	db *sql.DB
}

// NewPostStore wraps an open database. Call Init before use.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// OpenPostStore opens (or creates) the SQLite database at path and
// initializes its schema.
func OpenPostStore(ctx context.Context, path string) (*PostStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := NewPostStore(db)
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *PostStore) Close() error {
	return s.db.Close()
}

// Init creates the posts table if it does not exist.
func (s *PostStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			is_self INTEGER NOT NULL,
			author TEXT NOT NULL,
			url TEXT NOT NULL,
			downs INTEGER NOT NULL,
			ups INTEGER NOT NULL,
			score INTEGER NOT NULL,
			selftext TEXT NOT NULL,
			subreddit TEXT NOT NULL,
			title TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_subreddit ON posts(lower(subreddit));`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// postKey returns the primary key of a post. Posts without a Reddit
// fullname are keyed by subreddit and title.
func postKey(p features.RawPost) string {
	if p.ID != "" {
		return p.ID
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.ToLower(p.Subreddit)+"\x00"+p.Title)).String()
}

// Upsert inserts posts or refreshes the stored copy of posts already present.
func (s *PostStore) Upsert(ctx context.Context, posts []features.RawPost) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posts (id, is_self, author, url, downs, ups, score, selftext, subreddit, title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			downs = excluded.downs,
			ups = excluded.ups,
			score = excluded.score,
			selftext = excluded.selftext,
			title = excluded.title
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range posts {
		_, err := stmt.ExecContext(ctx, postKey(p), p.IsSelf, p.Author, p.URL,
			int64(p.Downs), int64(p.Ups), int64(p.Score), p.Selftext, p.Subreddit, p.Title)
		if err != nil {
			return fmt.Errorf("upsert post %s: %w", postKey(p), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit posts: %w", err)
	}
	return nil
}

// Posts returns the stored posts in insertion order, restricted to the
// given subreddits (case-insensitive) when any are given.
func (s *PostStore) Posts(ctx context.Context, subreddits ...string) ([]features.RawPost, error) {
	query := `SELECT id, is_self, author, url, downs, ups, score, selftext, subreddit, title FROM posts`
	args := make([]any, len(subreddits))
	if len(subreddits) > 0 {
		for i, sub := range subreddits {
			args[i] = strings.ToLower(sub)
		}
		query += ` WHERE lower(subreddit) IN (?` + strings.Repeat(`, ?`, len(subreddits)-1) + `)`
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []features.RawPost
	for rows.Next() {
		var (
			p                 features.RawPost
			downs, ups, score int64
		)
		if err := rows.Scan(&p.ID, &p.IsSelf, &p.Author, &p.URL, &downs, &ups, &score, &p.Selftext, &p.Subreddit, &p.Title); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Downs, p.Ups, p.Score = uint64(downs), uint64(ups), uint64(score)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Count returns the number of stored posts.
func (s *PostStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}
