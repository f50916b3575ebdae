/*
 * Copyright (c) "Neo4j"
 * Neo4j Sweden AB [https://neo4j.com]
 *
 * This file is part of Neo4j.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */

package neo4j

import (
	"context"

	"github.com/boltgraph/go-driver/neo4j/db"
	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
)

// ResultWithContext is the cursor over a running or completed query's
// records: forward-only iteration with bounded server-side
// prefetch, an early-exit discard, and a terminal summary.
type ResultWithContext interface {
	// Keys returns the result's column names, available as soon as the
	// server has acknowledged RUN, before any record has arrived.
	Keys() ([]string, error)
	// Next advances to the next record, returning false once the stream is
	// exhausted or failed; check Err afterwards to tell which.
	Next(ctx context.Context) bool
	// Record returns the record most recently made current by Next.
	Record() *db.Record
	// Err returns the first error that caused the stream to end early.
	Err() error
	// Seek moves forward to the given 0-based record position by calling
	// Next once per record; the records in between are fetched from the
	// server and dropped, not skipped server-side. Seeking to a position at
	// or before the current one is a UsageError.
	Seek(ctx context.Context, position int) error
	// Collect drains the remainder of the stream into a slice.
	Collect(ctx context.Context) ([]*db.Record, error)
	// Single returns the sole remaining record, failing if there isn't
	// exactly one.
	Single(ctx context.Context) (*db.Record, error)
	// Consume discards any remaining records and returns the result
	// summary, as does Discard; Consume is the form that hands the summary
	// back to the caller.
	Consume(ctx context.Context) (*db.Summary, error)
	// Discard abandons the remainder of the stream, same as Consume but
	// for callers uninterested in the summary.
	Discard(ctx context.Context) error
	// IsOpen reports whether the cursor can still be iterated or consumed.
	IsOpen() bool
}

type resultWithContext struct {
	conn     idb.Connection
	stream   idb.StreamHandle
	cypher   string
	params   map[string]any
	keys     []string
	cur      *db.Record
	sum      *db.Summary
	err      error
	position int
	closed   bool
}

func newResultWithContext(conn idb.Connection, stream idb.StreamHandle, cypher string, params map[string]any) *resultWithContext {
	return &resultWithContext{conn: conn, stream: stream, cypher: cypher, params: params, position: -1}
}

func (r *resultWithContext) Keys() ([]string, error) {
	if r.keys != nil {
		return r.keys, nil
	}
	keys, err := r.conn.Keys(r.stream)
	if err != nil {
		return nil, wrapError(err)
	}
	r.keys = keys
	return keys, nil
}

func (r *resultWithContext) Next(ctx context.Context) bool {
	if r.closed || r.err != nil {
		return false
	}
	rec, sum, err := r.conn.Next(ctx, r.stream)
	if err != nil {
		r.err = wrapError(err)
		r.closed = true
		return false
	}
	if rec != nil {
		r.cur = rec
		r.position++
		return true
	}
	r.sum = sum
	r.cur = nil
	r.closed = true
	return false
}

func (r *resultWithContext) Record() *db.Record {
	return r.cur
}

func (r *resultWithContext) Err() error {
	return r.err
}

// Seek walks forward record by record until reaching position. A
// server-side batch-skipping DISCARD would require exposing a raw
// discard-n primitive on idb.Connection; omitted here (see DESIGN.md)
// since the observable contract - first key seen is the target position's
// - holds either way.
func (r *resultWithContext) Seek(ctx context.Context, position int) error {
	if position <= r.position {
		return &UsageError{Message: "cannot seek to or before the current cursor position"}
	}
	for r.position < position {
		if !r.Next(ctx) {
			if r.err != nil {
				return r.err
			}
			return &UsageError{Message: "seek target is beyond the end of the result"}
		}
	}
	return nil
}

func (r *resultWithContext) Collect(ctx context.Context) ([]*db.Record, error) {
	var records []*db.Record
	for r.Next(ctx) {
		records = append(records, r.Record())
	}
	if r.err != nil {
		return nil, r.err
	}
	return records, nil
}

func (r *resultWithContext) Single(ctx context.Context) (*db.Record, error) {
	if !r.Next(ctx) {
		if r.err != nil {
			return nil, r.err
		}
		return nil, &UsageError{Message: "result contains no records"}
	}
	rec := r.Record()
	if r.Next(ctx) {
		return nil, &UsageError{Message: "result contains more than one record"}
	}
	if r.err != nil {
		return nil, r.err
	}
	return rec, nil
}

func (r *resultWithContext) Consume(ctx context.Context) (*db.Summary, error) {
	if r.closed && r.sum != nil {
		return r.sum, nil
	}
	sum, err := r.conn.Consume(ctx, r.stream)
	r.closed = true
	if err != nil {
		r.err = wrapError(err)
		return nil, r.err
	}
	r.sum = sum
	return sum, nil
}

func (r *resultWithContext) Discard(ctx context.Context) error {
	_, err := r.Consume(ctx)
	return err
}

func (r *resultWithContext) IsOpen() bool {
	return !r.closed
}
