package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedIDsAreStableAcrossCalls(t *testing.T) {
	dv := uuid.MustParse("01912d68-7a4e-7c3a-9f21-000000000001")
	raw := RawRecordID(dv, "ledger.csv:42")

	for i := 0; i < 10; i++ {
		assert.Equal(t, raw, RawRecordID(dv, "ledger.csv:42"))
		assert.Equal(t,
			EvidenceID(dv, "csrd", "emission_factor", "scope1/site-a"),
			EvidenceID(dv, "csrd", "emission_factor", "scope1/site-a"))
		assert.Equal(t,
			FindingID(dv, raw, "materiality", "scope1/site-a"),
			FindingID(dv, raw, "materiality", "scope1/site-a"))
	}
}

func TestDerivedIDsChangeWithAnyComponent(t *testing.T) {
	dv := uuid.MustParse("01912d68-7a4e-7c3a-9f21-000000000001")
	dv2 := uuid.MustParse("01912d68-7a4e-7c3a-9f21-000000000002")

	base := EvidenceID(dv, "csrd", "emission_factor", "k1")
	assert.NotEqual(t, base, EvidenceID(dv2, "csrd", "emission_factor", "k1"))
	assert.NotEqual(t, base, EvidenceID(dv, "forensics", "emission_factor", "k1"))
	assert.NotEqual(t, base, EvidenceID(dv, "csrd", "variance", "k1"))
	assert.NotEqual(t, base, EvidenceID(dv, "csrd", "emission_factor", "k2"))
}

func TestComponentBoundariesAreUnambiguous(t *testing.T) {
	dv := uuid.MustParse("01912d68-7a4e-7c3a-9f21-000000000001")
	// Concatenation-equal tuples must not collide.
	assert.NotEqual(t,
		EvidenceID(dv, "ab", "c", "k"),
		EvidenceID(dv, "a", "bc", "k"))
	assert.NotEqual(t,
		EvidenceID(dv, "eng", "xy", ""),
		EvidenceID(dv, "eng", "x", "y"))
}

func TestNamespacesSeparateEntityTypes(t *testing.T) {
	a := uuid.MustParse("01912d68-7a4e-7c3a-9f21-000000000001")
	b := uuid.MustParse("01912d68-7a4e-7c3a-9f21-000000000002")
	// Same component tuple, different entity type.
	assert.NotEqual(t, LinkID(a, b), derive(nsEvidence, a.String(), b.String()))
}

func TestDerivedIDsAreVersion5(t *testing.T) {
	dv := uuid.MustParse("01912d68-7a4e-7c3a-9f21-000000000001")
	id := EvidenceID(dv, "csrd", "emission_factor", "k1")
	assert.Equal(t, uuid.Version(5), id.Version())
}

func TestNewDatasetVersionIDIsTimeSortableV7(t *testing.T) {
	id, err := NewDatasetVersionID()
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	other, err := NewDatasetVersionID()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}
