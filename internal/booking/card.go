package booking

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const cardGroupSize = 4

// FormatCardNumber keeps the digits of s, truncated to 16, grouped by four.
func FormatCardNumber(s string) string {
	var digits []rune
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			digits = append(digits, r)
		}
		if len(digits) == minCardDigits {
			break
		}
	}

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%cardGroupSize == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// cardDigits returns only the digits of a card number.
func cardDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// LastFour returns the last four digits of a card number, or "" if it has fewer.
func LastFour(s string) string {
	d := cardDigits(s)
	if len(d) < cardGroupSize {
		return ""
	}
	return d[len(d)-cardGroupSize:]
}

// CardHasher fingerprints card numbers so that recorded requests never hold them in clear.
type CardHasher interface {
	Hash(cardNumber string) (string, error)
	Compare(hash, cardNumber string) error
}

// BcryptCardHasher is a CardHasher backed by bcrypt.
type BcryptCardHasher struct {
	cost int
}

// NewBcryptCardHasher creates a hasher with the given cost. Costs outside
// bcrypt's range fall back to bcrypt.DefaultCost.
func NewBcryptCardHasher(cost int) *BcryptCardHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptCardHasher{cost: cost}
}

func (h *BcryptCardHasher) Hash(cardNumber string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(cardDigits(cardNumber)), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h *BcryptCardHasher) Compare(hash, cardNumber string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(cardDigits(cardNumber)))
}
