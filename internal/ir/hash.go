package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room for a
// future change of algorithm.
const (
	DomainElement = "codebook/element/v1"
	DomainVocab   = "codebook/vocab/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MarshalElement returns the canonical JSON of s.
func MarshalElement(s ElementSpec) ([]byte, error) {
	if s.Args == nil {
		s.Args = []ArgSpec{}
	}
	return MarshalCanonical(s)
}

// ElementHash identifies an element spec by content. IDs are part of the
// content, so the same declaration registered at different IDs hashes
// differently.
func ElementHash(s ElementSpec) (string, error) {
	data, err := MarshalElement(s)
	if err != nil {
		return "", fmt.Errorf("ElementHash: %w", err)
	}
	return hashWithDomain(DomainElement, data), nil
}

// VocabHash identifies a whole vocabulary by content.
func VocabHash(v VocabSpec) (string, error) {
	items := make(IRArray, 0, len(v.Predicates)+len(v.Matrices))
	for _, s := range v.Elements() {
		h, err := ElementHash(s)
		if err != nil {
			return "", fmt.Errorf("VocabHash: %s: %w", s.Name, err)
		}
		items = append(items, IRString(h))
	}
	data, err := MarshalCanonical(items)
	if err != nil {
		return "", fmt.Errorf("VocabHash: %w", err)
	}
	return hashWithDomain(DomainVocab, data), nil
}

// MustElementHash is like ElementHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustElementHash(s ElementSpec) string {
	h, err := ElementHash(s)
	if err != nil {
		panic(err)
	}
	return h
}
