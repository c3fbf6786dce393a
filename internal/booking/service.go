package booking

import (
	"context"
	"fmt"
	"time"
)

// Recorder stores completed booking requests.
type Recorder interface {
	Record(ctx context.Context, sessionID string, draft Draft, quote Quote) (*Request, error)
}

// Service exposes the booking request archive.
type Service interface {
	Recorder
	GetByID(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context, filter Filter) ([]*Request, int, error)
}

type service struct {
	repo   Repository
	hasher CardHasher
	now    func() time.Time
}

func NewService(repo Repository, hasher CardHasher) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
		now:    time.Now,
	}
}

// Record assigns the next request id and stores the draft with the card
// number masked and the CVV removed.
func (s *service) Record(ctx context.Context, sessionID string, draft Draft, quote Quote) (*Request, error) {
	seq, err := s.repo.NextSequence(ctx)
	if err != nil {
		return nil, err
	}

	req := &Request{
		ID:        FormatRequestID(s.now().Year(), seq),
		SessionID: sessionID,
		Draft:     draft.Clone(),
		Quote:     quote,
	}

	if card := deref(draft.CardNumber); card != "" {
		fingerprint, err := s.hasher.Hash(card)
		if err != nil {
			return nil, fmt.Errorf("fingerprint card number failed: %w", err)
		}
		req.CardLast4 = LastFour(card)
		req.CardFingerprint = fingerprint
		masked := "**** **** **** " + req.CardLast4
		req.Draft.CardNumber = &masked
	}
	req.Draft.CVV = nil

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Request, int, error) {
	return s.repo.List(ctx, filter)
}

// FormatRequestID renders a request number as BK-<year>-<seq>, zero padded to three digits.
func FormatRequestID(year int, seq int64) string {
	return fmt.Sprintf("BK-%d-%03d", year, seq)
}
