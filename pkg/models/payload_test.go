package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadEqualityIgnoresKeyOrder(t *testing.T) {
	a, err := NewPayload(json.RawMessage(`{"a": 1, "b": "x"}`))
	require.NoError(t, err)
	b, err := NewPayload(json.RawMessage(`{"b":"x","a":1}`))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestPayloadFingerprintDiffersOnContent(t *testing.T) {
	a := MustPayload(`{"a":1}`)
	b := MustPayload(`{"a":2}`)
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestPayloadUnmarshalCanonicalizes(t *testing.T) {
	var body struct {
		Payload Payload `json:"payload"`
	}
	err := json.Unmarshal([]byte(`{"payload": {"z": 1, "a": 2}}`), &body)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"z":1}`, string(body.Payload))
}

func TestPayloadUnmarshalRejectsInvalidJSON(t *testing.T) {
	var p Payload
	assert.Error(t, p.UnmarshalJSON([]byte(``)))
}

func TestPayloadRoundTripsThroughJSON(t *testing.T) {
	p := MustPayload(`{"a":[1,2],"b":null}`)
	out, err := json.Marshal(struct {
		Payload Payload `json:"payload"`
	}{p})
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":{"a":[1,2],"b":null}}`, string(out))
}
