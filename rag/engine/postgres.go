package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mudler/xlog"
	"github.com/natanel567/newsrag/rag/interfaces"
	"github.com/natanel567/newsrag/rag/types"
)

// PostgresIndex is a vector index backed by PostgreSQL with the pgvector
// extension. Articles live in one table per collection with a VECTOR
// column; queries use cosine distance.
type PostgresIndex struct {
	pool           *pgxpool.Pool
	collectionName string
	tableName      string
	embedder       interfaces.Embedder
	embeddingDims  int
}

var _ interfaces.Index = (*PostgresIndex)(nil)

// NewPostgresIndex connects to the database and prepares the articles
// table for the collection. The embedder is probed once to learn the
// embedding dimensionality.
func NewPostgresIndex(ctx context.Context, databaseURL, collection string, embedder interfaces.Embedder) (*PostgresIndex, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the PostgreSQL index")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	probe, err := embedder.Embed(ctx, "test")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to probe embedding dimensions: %w", err)
	}

	pg := &PostgresIndex{
		pool:           pool,
		collectionName: collection,
		tableName:      sanitizeTableName(collection),
		embedder:       embedder,
		embeddingDims:  len(probe),
	}

	if err := pg.setupDatabase(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	return pg, nil
}

func sanitizeTableName(name string) string {
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	name = strings.ReplaceAll(name, " ", "_")
	// Ensure it starts with a letter
	if len(name) > 0 && (name[0] < 'a' || name[0] > 'z') && (name[0] < 'A' || name[0] > 'Z') {
		name = "col_" + name
	}
	return "articles_" + name
}

func (p *PostgresIndex) setupDatabase(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to enable vector extension: %w", err)
	}

	_, err = p.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			embedding VECTOR(%d)
		)
	`, p.tableName, p.embeddingDims))
	if err != nil {
		return fmt.Errorf("failed to create articles table: %w", err)
	}

	_, err = p.pool.Exec(ctx, fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_embedding ON %s
		USING hnsw(embedding vector_cosine_ops)
	`, p.tableName, p.tableName))
	if err != nil {
		xlog.Warn("Failed to create HNSW index", "error", err)
	}

	return nil
}

func formatVector(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (p *PostgresIndex) Count() int {
	var count int
	err := p.pool.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", p.tableName)).Scan(&count)
	if err != nil {
		xlog.Error("Failed to count articles", "error", err)
		return 0
	}
	return count
}

func (p *PostgresIndex) Reset() error {
	ctx := context.Background()

	_, err := p.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", p.tableName))
	if err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}

	return p.setupDatabase(ctx)
}

// Rebuild drops the articles table and repopulates it, embedding every
// article through the configured embedder.
func (p *PostgresIndex) Rebuild(ctx context.Context, articles []types.Article) error {
	if len(articles) == 0 {
		return fmt.Errorf("no articles to index")
	}

	if err := p.Reset(); err != nil {
		return err
	}

	for _, a := range articles {
		embedding, err := p.embedder.Embed(ctx, a.Text)
		if err != nil {
			return fmt.Errorf("failed to embed article: %w", err)
		}

		_, err = p.pool.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (content, category, date, link, embedding)
			VALUES ($1, $2, $3, $4, $5::vector)
		`, p.tableName), a.Text, a.Category, a.Date, a.Link, formatVector(embedding))
		if err != nil {
			return fmt.Errorf("failed to insert article: %w", err)
		}
	}

	return nil
}

// Query returns up to n candidates ordered by cosine distance. The
// retriever re-sorts, so the order here is not load-bearing.
func (p *PostgresIndex) Query(ctx context.Context, embedding []float32, n int) ([]types.Candidate, error) {
	if n <= 0 {
		return []types.Candidate{}, nil
	}

	rows, err := p.pool.Query(ctx, fmt.Sprintf(`
		SELECT
			content,
			category,
			date,
			link,
			(embedding <=> $1::vector) AS distance
		FROM %s
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector
		LIMIT $2
	`, p.tableName), formatVector(embedding), n)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer rows.Close()

	candidates := []types.Candidate{}
	for rows.Next() {
		var content, category, date, link string
		var distance float64

		if err := rows.Scan(&content, &category, &date, &link, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}

		candidates = append(candidates, types.Candidate{
			Document: content,
			Metadata: map[string]string{
				"category": category,
				"date":     date,
				"link":     link,
			},
			Distance: float32(distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search rows: %w", err)
	}

	return candidates, nil
}

// Close releases the connection pool.
func (p *PostgresIndex) Close() {
	p.pool.Close()
}
