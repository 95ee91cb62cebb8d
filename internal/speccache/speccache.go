// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

// Package speccache persists parsed contract interfaces keyed by code
// hash. Code entries are immutable per hash, so cached rows never go
// stale; the cache saves refetching and reparsing the module on every
// inspect or invoke.
package speccache

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stellar/go/xdr"
	_ "modernc.org/sqlite"

	"github.com/solrane/sorokit/internal/logger"
	"github.com/solrane/sorokit/rpc"
	"github.com/solrane/sorokit/soroban"
)

// Store handles spec cache database operations.
type Store struct {
	db *sql.DB
}

// Open opens the cache at its default location, ~/.sorokit/speccache.db.
func Open() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}
	dir := filepath.Join(home, ".sorokit")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return OpenAt(filepath.Join(dir, "speccache.db"))
}

// OpenAt opens the cache at the given path, creating the schema when
// missing.
func OpenAt(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spec cache: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS specs (
		wasm_hash TEXT PRIMARY KEY,
		protocol INTEGER NOT NULL,
		pre_release INTEGER NOT NULL,
		entries TEXT NOT NULL,
		meta TEXT NOT NULL,
		seps TEXT NOT NULL,
		cached_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to init spec cache schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a parsed contract interface under its code hash, replacing
// any previous row.
func (s *Store) Put(wasmHash xdr.Hash, info *soroban.ContractInfo) error {
	entries := info.Spec.Entries()
	encoded := make([]string, 0, len(entries))
	for _, entry := range entries {
		b64, err := xdr.MarshalBase64(entry)
		if err != nil {
			return fmt.Errorf("failed to encode spec entry: %w", err)
		}
		encoded = append(encoded, b64)
	}
	entriesJSON, err := json.Marshal(encoded)
	if err != nil {
		return fmt.Errorf("failed to marshal spec entries: %w", err)
	}
	metaJSON, err := json.Marshal(info.Meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	sepsJSON, err := json.Marshal(info.SupportedSEPs)
	if err != nil {
		return fmt.Errorf("failed to marshal seps: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO specs (wasm_hash, protocol, pre_release, entries, meta, seps, cached_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query,
		hex.EncodeToString(wasmHash[:]),
		int64(info.Protocol),
		int64(info.PreRelease),
		string(entriesJSON),
		string(metaJSON),
		string(sepsJSON),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert spec cache row: %w", err)
	}
	return nil
}

// Get loads the cached contract interface for a code hash. The second
// return is false when the hash has no row.
func (s *Store) Get(wasmHash xdr.Hash) (*soroban.ContractInfo, bool, error) {
	query := `SELECT protocol, pre_release, entries, meta, seps FROM specs WHERE wasm_hash = ?`

	var protocol, preRelease int64
	var entriesRaw, metaRaw, sepsRaw string
	err := s.db.QueryRow(query, hex.EncodeToString(wasmHash[:])).
		Scan(&protocol, &preRelease, &entriesRaw, &metaRaw, &sepsRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("spec cache query failed: %w", err)
	}

	var encoded []string
	if err := json.Unmarshal([]byte(entriesRaw), &encoded); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal spec entries: %w", err)
	}
	entries := make([]xdr.ScSpecEntry, 0, len(encoded))
	for _, b64 := range encoded {
		var entry xdr.ScSpecEntry
		if err := xdr.SafeUnmarshalBase64(b64, &entry); err != nil {
			return nil, false, fmt.Errorf("failed to decode cached spec entry: %w", err)
		}
		entries = append(entries, entry)
	}
	var meta []soroban.MetadataEntry
	if err := json.Unmarshal([]byte(metaRaw), &meta); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	var seps []string
	if err := json.Unmarshal([]byte(sepsRaw), &seps); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal seps: %w", err)
	}

	return &soroban.ContractInfo{
		Protocol:      uint32(protocol),
		PreRelease:    uint32(preRelease),
		Spec:          soroban.NewContractSpec(entries),
		Meta:          meta,
		SupportedSEPs: seps,
	}, true, nil
}

// FetchInfo resolves a contract's interface, consulting the cache by code
// hash before downloading the module. A nil store disables caching. Cache
// failures degrade to a fresh fetch rather than failing the call.
func FetchInfo(ctx context.Context, svc rpc.LedgerEntryGetter, store *Store, contractID string) (*soroban.ContractInfo, xdr.Hash, error) {
	wasmHash, err := rpc.FetchContractWasmHash(ctx, svc, contractID)
	if err != nil {
		return nil, xdr.Hash{}, err
	}

	if store != nil {
		info, ok, err := store.Get(wasmHash)
		if err != nil {
			logger.Logger.Warn("Spec cache read failed", "error", err)
		} else if ok {
			logger.Logger.Debug("Spec cache hit", "wasm_hash", hex.EncodeToString(wasmHash[:]))
			return info, wasmHash, nil
		}
	}

	code, err := rpc.FetchContractCodeByHash(ctx, svc, wasmHash)
	if err != nil {
		return nil, xdr.Hash{}, err
	}
	info, err := soroban.ParseContractByteCode(code)
	if err != nil {
		return nil, xdr.Hash{}, err
	}

	if store != nil {
		if err := store.Put(wasmHash, info); err != nil {
			logger.Logger.Warn("Spec cache write failed", "error", err)
		}
	}
	return info, wasmHash, nil
}
