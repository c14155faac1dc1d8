// Package rundb persists determinism-verification evidence in a local
// BadgerDB store.
//
// The numeric kernel performs no I/O, so this bookkeeping lives entirely
// outside the deterministic path: verification tools run a pipeline, digest
// the output bytes, and record the result here. A stored baseline digest per
// pipeline lets later runs on other machines or toolchains prove
// bit-identical behavior against the first recorded run.
package rundb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes. Run keys embed a nanosecond timestamp so iteration over a
// pipeline's prefix returns runs in recording order.
const (
	runPrefix      = "run:"
	baselinePrefix = "baseline:"
)

// Run is one recorded verification run.
type Run struct {
	Pipeline   string        `json:"pipeline"`
	Recorded   time.Time     `json:"recorded"`
	Iterations int           `json:"iterations"`
	Digest     string        `json:"digest"`
	MinLatency time.Duration `json:"min_latency"`
	MaxLatency time.Duration `json:"max_latency"`
}

// DB wraps a BadgerDB evidence store.
type DB struct {
	db *badger.DB
}

// Open opens (or creates) the evidence store in dir.
func Open(dir string) (*DB, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("rundb: open %s: %w", dir, err)
	}
	return &DB{db: db}, nil
}

// Close closes the store.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

func runKey(pipeline string, at time.Time) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", runPrefix, pipeline, at.UnixNano()))
}

func baselineKey(pipeline string) []byte {
	return []byte(baselinePrefix + pipeline)
}

// RecordRun appends a verification run to the evidence log.
func (d *DB) RecordRun(r Run) error {
	if r.Recorded.IsZero() {
		r.Recorded = time.Now()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runKey(r.Pipeline, r.Recorded), data)
	})
}

// Runs returns all recorded runs for a pipeline in recording order.
func (d *DB) Runs(pipeline string) ([]Run, error) {
	var runs []Run
	prefix := []byte(runPrefix + pipeline + ":")

	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var r Run
				if err := json.Unmarshal(val, &r); err != nil {
					return err
				}
				runs = append(runs, r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return runs, err
}

// SetBaseline stores the reference digest for a pipeline, overwriting any
// previous baseline.
func (d *DB) SetBaseline(pipeline, digest string) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(baselineKey(pipeline), []byte(digest))
	})
}

// Baseline returns the reference digest for a pipeline, if one has been
// recorded.
func (d *DB) Baseline(pipeline string) (string, bool, error) {
	var digest string
	found := false

	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(baselineKey(pipeline))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			digest = string(val)
			return nil
		})
	})
	return digest, found, err
}
