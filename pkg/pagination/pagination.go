// Package pagination implements keyset paging for the voucher listing
// endpoints. Listings are ordered newest first on (created_at, id); a page
// token names the last row the client saw, so a page stays stable while new
// vouchers are created ahead of it.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size when the request does not name one.
	DefaultLimit = 25
	// MaxLimit caps the page size a client can request.
	MaxLimit = 100
)

// Params carries the paging inputs taken from a list request.
type Params struct {
	Limit  int
	Cursor string
}

// Key identifies the last row of a page in the (created_at, id) sort order.
// created_at alone is not unique; the id breaks ties.
type Key struct {
	CreatedAt time.Time `json:"created_at"`
	ID        uuid.UUID `json:"id"`
}

// ClampLimit applies the default and the ceiling to a requested page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// FetchSize is the clamped limit plus one row. The extra row only signals
// that a further page exists and is never returned to the client.
func FetchSize(limit int) int {
	return ClampLimit(limit) + 1
}

// Token renders the key as an opaque URL-safe page token.
func (k Key) Token() string {
	payload, err := json.Marshal(k)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(payload)
}

// DecodeToken parses a token produced by Token. An empty token means the
// first page and yields a nil key.
func DecodeToken(value string) (*Key, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode page token: %w", err)
	}
	var key Key
	if err := json.Unmarshal(payload, &key); err != nil {
		return nil, fmt.Errorf("parse page token: %w", err)
	}
	if key.ID == uuid.Nil || key.CreatedAt.IsZero() {
		return nil, fmt.Errorf("page token is incomplete")
	}
	return &key, nil
}
