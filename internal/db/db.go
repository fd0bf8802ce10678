package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"quizify/internal/config"
	"quizify/internal/helper"
	"quizify/internal/models"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Document is one chunk row. Every build writes to its own table, so the
// table name is supplied per query.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	Ordinal       int             `bun:"ordinal,notnull"`
	Source        string          `bun:"source,notnull"`
	PageNumber    int             `bun:"page_number,notnull"`
	ChunkID       int             `bun:"chunk_id,notnull"`
	Content       string          `bun:"content,notnull"`
	Embedding     pgvector.Vector `bun:"embedding,notnull,type:vector"`
	Distance      float64         `bun:"distance,scanonly"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens a connection pool with the configured driver.
func ConnectDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "pq":
		return sql.Open("postgres", cfg.DSN)
	case "pgdriver", "":
		opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
		if cfg.Password != "" {
			opts = append(opts, pgdriver.WithPassword(cfg.Password))
		}
		return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Store builds vector collections in Postgres using the pgvector extension.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Open connects, checks the database is reachable and enables pgvector.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	sqldb, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	s := NewStore(NewDB(sqldb, cfg.Debug))
	if err := s.db.PingContext(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if err := s.InitDB(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) InitDB(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Build stores the chunks in a new table and returns a handle to it.
func (s *Store) Build(ctx context.Context, chunks []models.Chunk, vectors [][]float32) (*Collection, error) {
	if len(chunks) == 0 {
		return nil, models.ErrEmptyInput
	}
	dim, err := models.CheckEmbeddings(chunks, vectors)
	if err != nil {
		return nil, err
	}

	id, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	table := "chunks_" + strings.ReplaceAll(id, "-", "")

	_, err = s.db.NewCreateTable().
		Model((*Document)(nil)).
		ModelTableExpr("?", bun.Ident(table)).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	coll := &Collection{db: s.db, table: table, dim: dim}

	docs := make([]Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = Document{
			Ordinal:    chunk.Ordinal,
			Source:     chunk.Source,
			PageNumber: chunk.PageNumber,
			ChunkID:    chunk.ChunkID,
			Content:    chunk.Content,
			Embedding:  pgvector.NewVector(vectors[i]),
		}
	}
	_, err = s.db.NewInsert().
		Model(&docs).
		ModelTableExpr("?", bun.Ident(table)).
		Exec(ctx)
	if err != nil {
		_ = coll.Drop(ctx)
		return nil, fmt.Errorf("failed to store documents: %w", err)
	}
	coll.count = len(docs)

	log.Debug().Str("table", table).Int("documents", coll.count).Int("dim", dim).Msg("Built collection")
	return coll, nil
}

// Collection is a table of chunk rows created by Store.Build.
type Collection struct {
	db    *bun.DB
	table string
	dim   int
	count int
}

// Query ranks rows by cosine distance; ties fall back to ordinal order.
func (c *Collection) Query(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	if c == nil || c.db == nil {
		return nil, models.ErrNotInitialized
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(vector) != c.dim {
		return nil, fmt.Errorf("query vector has %d dimensions, collection has %d", len(vector), c.dim)
	}

	var docs []Document
	err := c.db.NewSelect().
		Model(&docs).
		ModelTableExpr("? AS d", bun.Ident(c.table)).
		Column("ordinal", "source", "page_number", "chunk_id", "content").
		ColumnExpr("embedding <=> ? AS distance", pgvector.NewVector(vector)).
		OrderExpr("distance ASC, ordinal ASC").
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	scored := make([]models.ScoredChunk, len(docs))
	for i, doc := range docs {
		scored[i] = models.ScoredChunk{
			Chunk: models.Chunk{
				Content:    doc.Content,
				Source:     doc.Source,
				PageNumber: doc.PageNumber,
				ChunkID:    doc.ChunkID,
				Ordinal:    doc.Ordinal,
			},
			Score: 1 - doc.Distance,
		}
	}
	return scored, nil
}

func (c *Collection) Count() int {
	if c == nil || c.db == nil {
		return 0
	}
	return c.count
}

// Drop removes the table. The handle is unusable afterwards.
func (c *Collection) Drop(ctx context.Context) error {
	if c == nil || c.db == nil {
		return nil
	}
	_, err := c.db.NewDropTable().
		Table(c.table).
		IfExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop table %s: %w", c.table, err)
	}
	c.db = nil
	c.count = 0
	return nil
}
