package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores every document in a single JSONB table. Top-level field
// replacement maps onto jsonb concatenation (doc || partial), which merges
// exactly one level deep, and ApplyBatch maps onto a pgx transaction.
// Change notification is in-process: this API server is the only writer.
type Postgres struct {
	pool *pgxpool.Pool
	not  *notifier
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection  text NOT NULL,
	id          text NOT NULL,
	doc         jsonb NOT NULL,
	created_seq bigint GENERATED ALWAYS AS IDENTITY,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_seq_idx
	ON documents (collection, created_seq);
`

// NewPostgres creates a Postgres-backed store on an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	p := &Postgres{pool: pool}
	p.not = newNotifier(p.List)
	return p
}

// EnsureSchema creates the documents table if it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) NewID() string {
	return uuid.NewString()
}

func (p *Postgres) Create(ctx context.Context, collection string, doc any) (string, error) {
	id := p.NewID()
	raw, err := marshalWithID(doc, id)
	if err != nil {
		return "", err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)`,
		collection, id, raw)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	p.not.publish(ctx, collection)
	return id, nil
}

func (p *Postgres) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	partial, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE documents SET doc = doc || $3::jsonb WHERE collection = $1 AND id = $2`,
		collection, id, partial)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.not.publish(ctx, collection)
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.not.publish(ctx, collection)
	return nil
}

func (p *Postgres) GetOnce(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return Document{ID: id, Data: raw}, nil
}

func (p *Postgres) List(ctx context.Context, collection, orderBy string, desc bool) ([]Document, error) {
	// created_seq keeps equal sort keys in order of first write.
	query := `SELECT id, doc FROM documents WHERE collection = $1 ORDER BY doc->>$2 ASC, created_seq ASC`
	if desc {
		query = `SELECT id, doc FROM documents WHERE collection = $1 ORDER BY doc->>$2 DESC, created_seq ASC`
	}
	rows, err := p.pool.Query(ctx, query, collection, orderBy)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (p *Postgres) ApplyBatch(ctx context.Context, ops []BatchOp) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	touched := make(map[string]struct{})
	for i, op := range ops {
		switch op.Kind {
		case OpCreate:
			raw, err := marshalWithID(op.Doc, op.ID)
			if err != nil {
				return fmt.Errorf("batch op %d: %w", i, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)`,
				op.Collection, op.ID, raw); err != nil {
				return fmt.Errorf("batch op %d: %w", i, err)
			}
		case OpUpdate:
			partial, err := json.Marshal(op.Fields)
			if err != nil {
				return fmt.Errorf("batch op %d: %w", i, err)
			}
			tag, err := tx.Exec(ctx,
				`UPDATE documents SET doc = doc || $3::jsonb WHERE collection = $1 AND id = $2`,
				op.Collection, op.ID, partial)
			if err != nil {
				return fmt.Errorf("batch op %d: %w", i, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("batch op %d: %w", i, ErrNotFound)
			}
		case OpDelete:
			tag, err := tx.Exec(ctx,
				`DELETE FROM documents WHERE collection = $1 AND id = $2`,
				op.Collection, op.ID)
			if err != nil {
				return fmt.Errorf("batch op %d: %w", i, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("batch op %d: %w", i, ErrNotFound)
			}
		default:
			return fmt.Errorf("batch op %d: unknown kind %q", i, op.Kind)
		}
		touched[op.Collection] = struct{}{}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	for collection := range touched {
		p.not.publish(ctx, collection)
	}
	return nil
}

func (p *Postgres) Subscribe(ctx context.Context, collection, orderBy string, desc bool) (*Subscription, error) {
	sub := p.not.subscribe(collection, orderBy, desc)
	docs, err := p.List(ctx, collection, orderBy, desc)
	if err != nil {
		sub.Close()
		return nil, err
	}
	sub.push(docs)
	return sub, nil
}
