package search

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Direction indicates which way a cursor pages through the ordering.
type Direction int

const (
	// Forward pages toward later positions in the ordering (next page).
	Forward Direction = iota
	// Backward pages toward earlier positions (previous page).
	Backward
)

// Cursor is a position in a sorted result stream: the sort-column values at
// that position plus the row identifier that breaks ties. The encoded form is
// opaque and tamper-evident; decoding an unmodified token reproduces the
// exact position it was issued for.
type Cursor struct {
	SortValues []interface{} `json:"v"`
	TieBreakID string        `json:"id"`
	Direction  Direction     `json:"d"`
	IssuedAt   time.Time     `json:"t"`
}

// CursorCodec encodes cursors as base64(HMAC-SHA256 || JSON payload). A token
// whose signature does not verify is rejected as invalid rather than being
// decoded into a different-looking position.
type CursorCodec struct {
	secret []byte
}

func NewCursorCodec(secret []byte) *CursorCodec {
	return &CursorCodec{secret: secret}
}

const cursorSigLen = sha256.Size

// Encode serializes and signs a cursor.
func (c *CursorCodec) Encode(cur *Cursor) (string, error) {
	payload, err := json.Marshal(cur)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	sig := mac.Sum(nil)

	combined := make([]byte, len(sig)+len(payload))
	copy(combined, sig)
	copy(combined[len(sig):], payload)

	return base64.RawURLEncoding.EncodeToString(combined), nil
}

// Decode verifies and deserializes a token. Any malformed or tampered token
// yields an *InvalidCursorError.
func (c *CursorCodec) Decode(token string) (*Cursor, error) {
	if token == "" {
		return nil, &InvalidCursorError{Reason: "empty token"}
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, &InvalidCursorError{Reason: "bad base64 encoding"}
	}
	if len(raw) <= cursorSigLen {
		return nil, &InvalidCursorError{Reason: "token too short"}
	}

	sig := raw[:cursorSigLen]
	payload := raw[cursorSigLen:]

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, &InvalidCursorError{Reason: "signature verification failed"}
	}

	var cur Cursor
	if err := json.Unmarshal(payload, &cur); err != nil {
		return nil, &InvalidCursorError{Reason: "bad payload"}
	}

	return &cur, nil
}
