package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/request"
)

// Repository defines data access methods for recorded booking requests.
type Repository interface {
	// NextSequence returns the next request number. Numbers are never reused.
	NextSequence(ctx context.Context) (int64, error)
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context, filter Filter) ([]*Request, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, "SELECT nextval('public.booking_request_seq')").Scan(&seq); err != nil {
		return 0, fmt.Errorf("next booking request sequence failed: %w", err)
	}
	return seq, nil
}

func (r *pgxRepository) Create(ctx context.Context, req *Request) error {
	draft, err := json.Marshal(req.Draft)
	if err != nil {
		return fmt.Errorf("encode booking draft failed: %w", err)
	}
	quote, err := json.Marshal(req.Quote)
	if err != nil {
		return fmt.Errorf("encode booking quote failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.booking_requests").
		Columns("id", "session_id", "draft", "quote", "card_last4", "card_fingerprint").
		Values(req.ID, req.SessionID, draft, quote, req.CardLast4, req.CardFingerprint).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking request query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&req.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateRequest
		}
		return fmt.Errorf("create booking request failed: %w", err)
	}
	return nil
}

var requestColumns = []string{"id", "session_id", "draft", "quote", "card_last4", "card_fingerprint", "created_at"}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Request, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(requestColumns...).
		From("public.booking_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking request query failed: %w", err)
	}

	req, err := scanRequest(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking request failed: %w", err)
	}
	return req, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Request, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(requestColumns, "count(*) OVER() AS total_count")...).
		From("public.booking_requests")

	if filter.SessionID != "" {
		query = query.Where(squirrel.Eq{"session_id": filter.SessionID})
	}

	page := pageOf(filter)
	query = query.OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.PageSize)).
		Offset(uint64(page.Offset()))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list booking requests query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list booking requests failed: %w", err)
	}
	defer rows.Close()

	var requests []*Request
	var total int
	for rows.Next() {
		var (
			req          Request
			draft, quote []byte
		)
		if err := rows.Scan(
			&req.ID, &req.SessionID, &draft, &quote, &req.CardLast4, &req.CardFingerprint, &req.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking request failed: %w", err)
		}
		if err := decodeRequest(&req, draft, quote); err != nil {
			return nil, 0, err
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate booking requests failed: %w", err)
	}

	return requests, total, nil
}

func scanRequest(row pgx.Row) (*Request, error) {
	var (
		req          Request
		draft, quote []byte
	)
	if err := row.Scan(&req.ID, &req.SessionID, &draft, &quote, &req.CardLast4, &req.CardFingerprint, &req.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeRequest(&req, draft, quote); err != nil {
		return nil, err
	}
	return &req, nil
}

func decodeRequest(req *Request, draft, quote []byte) error {
	if err := json.Unmarshal(draft, &req.Draft); err != nil {
		return fmt.Errorf("decode booking draft failed: %w", err)
	}
	if err := json.Unmarshal(quote, &req.Quote); err != nil {
		return fmt.Errorf("decode booking quote failed: %w", err)
	}
	return nil
}

func pageOf(filter Filter) request.ListParams {
	p := request.ListParams{Page: max(filter.Page, 0), PageSize: max(filter.PageSize, 0)}
	p.Normalize()
	return p
}

// memoryRepository keeps recorded requests in process memory. It is used
// when no database is configured.
type memoryRepository struct {
	mu       sync.RWMutex
	seq      int64
	requests map[string]*Request
	now      func() time.Time
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		requests: make(map[string]*Request),
		now:      time.Now,
	}
}

func (r *memoryRepository) NextSequence(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *memoryRepository) Create(ctx context.Context, req *Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[req.ID]; exists {
		return ErrDuplicateRequest
	}
	req.CreatedAt = r.now().UTC()
	stored := *req
	stored.Draft = req.Draft.Clone()
	r.requests[req.ID] = &stored
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *req
	out.Draft = req.Draft.Clone()
	return &out, nil
}

func (r *memoryRepository) List(ctx context.Context, filter Filter) ([]*Request, int, error) {
	r.mu.RLock()
	var matched []*Request
	for _, req := range r.requests {
		if filter.SessionID != "" && req.SessionID != filter.SessionID {
			continue
		}
		out := *req
		out.Draft = req.Draft.Clone()
		matched = append(matched, &out)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	page := pageOf(filter)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)
	return matched[start:end], total, nil
}
