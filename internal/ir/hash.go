package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSpec    = "trajcon/spec/v1"
	DomainSpecSet = "trajcon/specset/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SpecHash computes the content-addressed hash of a single constraint spec.
func SpecHash(spec ConstraintSpec) (string, error) {
	canonical, err := MarshalCanonical(spec)
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// SpecSetHash computes a hash over a set of specs, independent of order.
// Refs make a constraint depend on its siblings, so runs record the hash of
// the whole set they were built from.
func SpecSetHash(specs []ConstraintSpec) (string, error) {
	hashes := make([]string, 0, len(specs))
	for _, spec := range specs {
		h, err := SpecHash(spec)
		if err != nil {
			return "", err
		}
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	arr := make([]any, len(hashes))
	for i, h := range hashes {
		arr[i] = h
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("SpecSetHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpecSet, canonical), nil
}
