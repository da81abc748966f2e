package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"MentionScanner/internal/domain"
	"MentionScanner/internal/ports"
)

// PostgresRepository archives items into the mentions table:
//
//	CREATE TABLE mentions (
//	    source     text NOT NULL,
//	    keyword    text NOT NULL,
//	    title      text NOT NULL,
//	    url        text NOT NULL UNIQUE,
//	    author     text NOT NULL DEFAULT '',
//	    score      double precision NOT NULL DEFAULT 0,
//	    fetched_at timestamptz NOT NULL
//	);
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ItemRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Seen returns the subset of urls already archived by prior runs.
func (r *PostgresRepository) Seen(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if r.db == nil || len(urls) == 0 {
		return result, nil
	}

	query, args, err := r.builder.
		Select("url").
		From("mentions").
		Where(sq.Expr("url = ANY(?)", pq.StringArray(urls))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Transient("query seen urls", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[u] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveBatch appends items in one insert, skipping urls that raced in since
// the seen check. Returns the number of rows actually written.
func (r *PostgresRepository) SaveBatch(ctx context.Context, items []domain.Item) (int, error) {
	if r.db == nil || len(items) == 0 {
		return 0, nil
	}

	insert := r.builder.
		Insert("mentions").
		Columns("source", "keyword", "title", "url", "author", "score", "fetched_at")

	for _, item := range items {
		insert = insert.Values(
			string(item.Source),
			item.Keyword,
			item.Title,
			item.URL,
			item.Author,
			item.Score,
			item.FetchedAt,
		)
	}

	query, args, err := insert.Suffix("ON CONFLICT (url) DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, domain.Transient("insert mentions", err)
	}

	written, err := result.RowsAffected()
	if err != nil {
		return len(items), nil
	}
	return int(written), nil
}
