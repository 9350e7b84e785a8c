package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/librarydb/librarydb/internal/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchAuthors returns authors whose full name contains q, case-insensitively.
func (r *Repository) SearchAuthors(ctx context.Context, q string, limit int) ([]model.SearchResult, error) {
	query := `
		SELECT id, TRIM(name || ' ' || surname) AS display
		FROM authors
		WHERE (name || ' ' || surname) ILIKE $1 ESCAPE '\'
		ORDER BY display, id
		LIMIT $2
	`
	return r.searchMini(ctx, query, q, limit)
}

// SearchMedia returns media whose title contains q, case-insensitively.
func (r *Repository) SearchMedia(ctx context.Context, q string, limit int) ([]model.SearchResult, error) {
	query := `
		SELECT id, title
		FROM media
		WHERE title ILIKE $1 ESCAPE '\'
		ORDER BY title, id
		LIMIT $2
	`
	return r.searchMini(ctx, query, q, limit)
}

func (r *Repository) searchMini(ctx context.Context, query, q string, limit int) ([]model.SearchResult, error) {
	pattern := "%" + likeEscaper.Replace(q) + "%"

	rows, err := r.pool.Query(ctx, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to run mini search: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SearchResult, error) {
		var res model.SearchResult
		err := row.Scan(&res.ID, &res.Name)
		return res, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan mini search: %w", err)
	}

	return results, nil
}
