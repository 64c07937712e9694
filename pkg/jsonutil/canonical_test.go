package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeSortsKeysAtEveryDepth(t *testing.T) {
	raw := json.RawMessage(`{"b": 1, "a": {"z": true, "m": [3, {"y": null, "x": "v"}]}}`)

	got, err := Canonicalize(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"m":[3,{"x":"v","y":null}],"z":true},"b":1}`, string(got))
}

func TestCanonicalizeStructuralEqualityIsByteEquality(t *testing.T) {
	a, err := Canonicalize(json.RawMessage(`{ "scope": 1, "unit": "tCO2e" }`))
	require.NoError(t, err)
	b, err := Canonicalize(json.RawMessage(`{"unit":"tCO2e","scope":1}`))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCanonicalizePreservesNumberText(t *testing.T) {
	// json.Number keeps the source representation; no float round-trip.
	got, err := Canonicalize(json.RawMessage(`{"v": 10.50, "n": 9007199254740993}`))
	require.NoError(t, err)
	assert.Equal(t, `{"n":9007199254740993,"v":10.50}`, string(got))
}

func TestCanonicalizeDoesNotEscapeHTML(t *testing.T) {
	got, err := Canonicalize(json.RawMessage(`{"q": "a<b&c>d"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"q":"a<b&c>d"}`, string(got))
}

func TestCanonicalizeRejectsInvalidInput(t *testing.T) {
	cases := []string{"", "{", `{"a":1}trailing`, "not json"}
	for _, c := range cases {
		_, err := Canonicalize(json.RawMessage(c))
		assert.Error(t, err, "input %q", c)
	}
}

func TestCanonicalizeScalarDocuments(t *testing.T) {
	got, err := Canonicalize(json.RawMessage(`"plain"`))
	require.NoError(t, err)
	assert.Equal(t, `"plain"`, string(got))

	got, err = Canonicalize(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Equal(t, `null`, string(got))
}
