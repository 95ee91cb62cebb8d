// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package soroban

import (
	"bytes"
	"strings"

	"github.com/stellar/go/xdr"
)

// Custom-section markers embedded in compiled contract modules. The
// module container is not parsed; sections are located by searching for
// these byte strings directly.
const (
	envMetaMarker = "contractenvmetav0"
	specMarker    = "contractspecv0"
	metaMarker    = "contractmetav0"
)

var sectionMarkers = []string{envMetaMarker, specMarker, metaMarker}

// ContractInfo holds the metadata extracted from a compiled contract
// module: the environment interface it was built against, its function
// and type definitions, and any key-value metadata.
type ContractInfo struct {
	// Protocol and PreRelease identify the environment interface version
	// the contract was compiled for.
	Protocol   uint32
	PreRelease uint32

	// Spec holds the decoded function and type definitions.
	Spec *ContractSpec

	// Meta lists the key-value metadata entries in the order they appear
	// in the binary. Duplicate keys are retained; MetaValue resolves to
	// the last occurrence.
	Meta []MetadataEntry

	// SupportedSEPs lists the protocol numbers declared in the "sep"
	// metadata value, first occurrence first.
	SupportedSEPs []string
}

// MetadataEntry is a single key-value pair from the contract's metadata
// section.
type MetadataEntry struct {
	Key   string
	Value string
}

// MetaValue returns the value of the given metadata key. When the key
// appears more than once the last occurrence wins.
func (ci *ContractInfo) MetaValue(key string) (string, bool) {
	return metaValue(ci.Meta, key)
}

// ParseContractByteCode extracts environment meta, spec entries, and
// metadata from compiled contract byte code.
//
// The sections carry no explicit length, so each one spans from its
// marker to the start of the nearest following marker, or to the end of
// the buffer. Records are decoded one at a time until the remaining
// bytes no longer form a valid record.
func ParseContractByteCode(code []byte) (*ContractInfo, error) {
	envSection, ok := sectionAfter(code, envMetaMarker)
	if !ok {
		return nil, &ParseFailedError{Message: "environment meta not found"}
	}
	protocol, preRelease, err := decodeEnvMeta(envSection)
	if err != nil {
		return nil, err
	}

	specSection, _ := sectionAfter(code, specMarker)
	entries := decodeSpecEntries(specSection)
	if len(entries) == 0 {
		return nil, &ParseFailedError{Message: "spec entries not found"}
	}

	metaSection, _ := sectionAfter(code, metaMarker)
	meta := decodeMetaEntries(metaSection)

	return &ContractInfo{
		Protocol:      protocol,
		PreRelease:    preRelease,
		Spec:          NewContractSpec(entries),
		Meta:          meta,
		SupportedSEPs: supportedSEPs(meta),
	}, nil
}

// sectionAfter returns the bytes between the first occurrence of marker
// and the start of the nearest following known marker, or the end of
// code. The second return is false when the marker is absent.
func sectionAfter(code []byte, marker string) ([]byte, bool) {
	idx := bytes.Index(code, []byte(marker))
	if idx < 0 {
		return nil, false
	}
	start := idx + len(marker)
	end := len(code)
	for _, other := range sectionMarkers {
		if other == marker {
			continue
		}
		if j := bytes.Index(code[start:], []byte(other)); j >= 0 && start+j < end {
			end = start + j
		}
	}
	return code[start:end], true
}

func decodeEnvMeta(section []byte) (protocol, preRelease uint32, err error) {
	var entry xdr.ScEnvMetaEntry
	if _, err := xdr.Unmarshal(bytes.NewReader(section), &entry); err != nil {
		return 0, 0, &ParseFailedError{Message: "environment meta not found"}
	}
	if entry.Kind != xdr.ScEnvMetaKindScEnvMetaKindInterfaceVersion || entry.InterfaceVersion == nil {
		return 0, 0, &ParseFailedError{Message: "environment meta not found"}
	}
	return uint32(entry.InterfaceVersion.Protocol), uint32(entry.InterfaceVersion.PreRelease), nil
}

func decodeSpecEntries(section []byte) []xdr.ScSpecEntry {
	var entries []xdr.ScSpecEntry
	r := bytes.NewReader(section)
	for r.Len() > 0 {
		var entry xdr.ScSpecEntry
		if _, err := xdr.Unmarshal(r, &entry); err != nil {
			break
		}
		entries = append(entries, entry)
	}
	return entries
}

func decodeMetaEntries(section []byte) []MetadataEntry {
	var out []MetadataEntry
	r := bytes.NewReader(section)
	for r.Len() > 0 {
		var entry xdr.ScMetaEntry
		if _, err := xdr.Unmarshal(r, &entry); err != nil {
			break
		}
		if entry.V0 == nil {
			continue
		}
		out = append(out, MetadataEntry{Key: string(entry.V0.Key), Value: string(entry.V0.Val)})
	}
	return out
}

func metaValue(entries []MetadataEntry, key string) (string, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Key == key {
			return entries[i].Value, true
		}
	}
	return "", false
}

// supportedSEPs splits the "sep" metadata value on commas, trims each
// part, and deduplicates while preserving first-seen order.
func supportedSEPs(entries []MetadataEntry) []string {
	raw, ok := metaValue(entries, "sep")
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var seps []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		seps = append(seps, part)
	}
	return seps
}
