package attachment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, a *Attachment) error
	GetByID(ctx context.Context, id string) (*Attachment, error)
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, a *Attachment) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.attachments").
		Columns("id", "session_id", "filename", "storage_path", "thumbnail_path", "content_type", "size", "created_at").
		Values(a.ID, a.SessionID, a.Filename, a.StoragePath, a.ThumbnailPath, a.ContentType, a.Size, a.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build create attachment query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create attachment failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Attachment, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "session_id", "filename", "storage_path", "thumbnail_path", "content_type", "size", "created_at").
		From("public.attachments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get attachment query failed: %w", err)
	}

	var a Attachment
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.SessionID, &a.Filename, &a.StoragePath, &a.ThumbnailPath, &a.ContentType, &a.Size, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get attachment failed: %w", err)
	}
	return &a, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.attachments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete attachment query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete attachment failed: %w", err)
	}
	return nil
}

type memoryRepository struct {
	mu    sync.RWMutex
	items map[string]Attachment
}

func NewMemoryRepository() Repository {
	return &memoryRepository{items: make(map[string]Attachment)}
}

func (r *memoryRepository) Create(ctx context.Context, a *Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.ID] = *a
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
