package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/evidentia-io/evidentia-ledger/pkg/jsonutil"
)

// Payload is an opaque structured value carried by ledger records. It is
// always held in canonical JSON form (sorted keys, no insignificant
// whitespace), so structural equality is plain byte equality and the
// fingerprint is stable across runs. Shape validation per kind happens at the
// engine boundary, never inside the ledger.
type Payload json.RawMessage

// NewPayload canonicalizes raw JSON into a Payload. Invalid JSON is an error.
func NewPayload(raw json.RawMessage) (Payload, error) {
	canonical, err := jsonutil.Canonicalize(raw)
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	return Payload(canonical), nil
}

// MustPayload is NewPayload for literals in tests and fixtures.
func MustPayload(raw string) Payload {
	p, err := NewPayload(json.RawMessage(raw))
	if err != nil {
		panic(err)
	}
	return p
}

// Equal reports structural equality, which for canonical form is byte
// equality.
func (p Payload) Equal(other Payload) bool {
	return string(p) == string(other)
}

// Fingerprint returns the SHA-256 hex digest of the canonical bytes. Stored
// alongside the payload for forensic diffing across runs.
func (p Payload) Fingerprint() string {
	sum := sha256.Sum256(p)
	return hex.EncodeToString(sum[:])
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// UnmarshalJSON canonicalizes on the way in, so payloads decoded from request
// bodies are already in comparable form.
func (p *Payload) UnmarshalJSON(data []byte) error {
	if p == nil {
		return errors.New("models.Payload: UnmarshalJSON on nil pointer")
	}
	canonical, err := jsonutil.Canonicalize(data)
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	*p = Payload(canonical)
	return nil
}
