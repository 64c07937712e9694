// Package identity derives every deterministic identifier in the ledger.
//
// All derived ids are name-based (RFC 4122 version 5) UUIDs computed over a
// per-entity namespace and the entity's ordered stable key tuple. The same
// tuple yields the same id in any process at any time; there is no random or
// clock input anywhere in the derivation. The one exception is the dataset
// version root, which is allocated as a time-sortable UUIDv7 exactly once at
// ingestion and never derived again.
package identity

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Fixed namespaces, one per entity type so the same key components can never
// collide across entities. Generated once; never change these.
var (
	nsRawRecord = uuid.MustParse("5e1f8a9c-3d42-4b7e-9c61-2f0a8b4d7e13")
	nsEvidence  = uuid.MustParse("7b3c2d1e-8f5a-4c96-b074-9d6e1a2f3c58")
	nsFinding   = uuid.MustParse("9a4d6e2f-1b8c-4d73-a5e9-0c7f3b2d8a46")
	nsLink      = uuid.MustParse("2c8e4f6a-9d1b-4e85-b3c7-5a0d9f2e6b71")
)

// NewDatasetVersionID allocates a fresh time-sortable id for a dataset
// version. This is the only non-deterministic allocator in the package.
func NewDatasetVersionID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("allocate dataset version id: %w", err)
	}
	return id, nil
}

// RawRecordID derives the id of a raw record from its owning dataset version
// and the ingestion-stable source key, so re-ingesting the same snapshot
// reproduces byte-identical ids.
func RawRecordID(datasetVersionID uuid.UUID, sourceKey string) uuid.UUID {
	return derive(nsRawRecord, datasetVersionID.String(), sourceKey)
}

// EvidenceID derives the id of an evidence record. The stable key is chosen
// by the producing engine and must be unique within (engine, kind) for the
// dataset version.
func EvidenceID(datasetVersionID uuid.UUID, engineID, kind, stableKey string) uuid.UUID {
	return derive(nsEvidence, datasetVersionID.String(), engineID, kind, stableKey)
}

// FindingID derives the id of a finding from its dataset version, its source
// raw record, its kind, and the engine-chosen stable key.
func FindingID(datasetVersionID, rawRecordID uuid.UUID, kind, stableKey string) uuid.UUID {
	return derive(nsFinding, datasetVersionID.String(), rawRecordID.String(), kind, stableKey)
}

// LinkID derives the id of a finding-evidence link edge.
func LinkID(findingID, evidenceID uuid.UUID) uuid.UUID {
	return derive(nsLink, findingID.String(), evidenceID.String())
}

// derive hashes the ordered component tuple under the namespace. Components
// are length-prefixed so boundaries are unambiguous: ("ab","c") and ("a","bc")
// hash differently.
func derive(ns uuid.UUID, components ...string) uuid.UUID {
	var buf []byte
	var lenPrefix [4]byte
	for _, c := range components {
		binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(c)))
		buf = append(buf, lenPrefix[:]...)
		buf = append(buf, c...)
	}
	return uuid.NewSHA1(ns, buf)
}
