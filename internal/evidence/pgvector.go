package evidence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"github.com/rotisserie/eris"

	"github.com/clearleaf/greenwash-cli/internal/resilience"
)

// querier is the slice of pgxpool.Pool this package uses; pgxmock
// satisfies it in tests.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const searchSQL = `
SELECT content, 1 - (embedding <=> $1) AS score
FROM passages
WHERE session_id = $2
ORDER BY embedding <=> $1
LIMIT $3`

// PgSearcher searches the pgvector-backed passage table for one session's
// document.
type PgSearcher struct {
	db        querier
	embed     Embedder
	sessionID string
}

// NewPgSearcher creates a searcher scoped to one ingestion session.
func NewPgSearcher(db querier, embed Embedder, sessionID string) *PgSearcher {
	return &PgSearcher{db: db, embed: embed, sessionID: sessionID}
}

// Search embeds the query and returns the k nearest passages by cosine
// distance.
func (s *PgSearcher) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	if k <= 0 {
		k = 10
	}

	vec, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, resilience.WithKind(resilience.KindToolUnavailable,
			eris.Wrap(err, "evidence: embed query"))
	}

	rows, err := s.db.Query(ctx, searchSQL, pgvector.NewVector(vec), s.sessionID, k)
	if err != nil {
		return nil, resilience.WithKind(resilience.KindToolUnavailable,
			eris.Wrap(err, "evidence: search passages"))
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		var p Passage
		if err := rows.Scan(&p.Content, &p.Score); err != nil {
			return nil, eris.Wrap(err, "evidence: scan passage")
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "evidence: iterate passages")
	}
	return passages, nil
}
