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

package bolt

import (
	"errors"

	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
	"github.com/boltgraph/go-driver/neo4j/db"
)

// stream is the connection-side bookkeeping for one result cursor: its
// RUN-assigned keys/qid, any records buffered ahead of demand, and its
// terminal summary or error once exhausted.
type stream struct {
	fetchSize  int
	qid        int64
	keys       []string
	tfirst     int64
	sum        *db.Summary
	err        error
	endOfBatch bool
	discarding bool
	records    []*db.Record
}

func (s *stream) push(rec *db.Record) {
	s.records = append(s.records, rec)
}

func (s *stream) emptyRecords() {
	s.records = s.records[:0]
}

// bufferedNext returns a buffered record or the terminal outcome without
// touching the wire. buffered is false when neither is available yet and
// the caller needs to pull more or wait for the in-flight response.
func (s *stream) bufferedNext() (buffered bool, rec *db.Record, sum *db.Summary, err error) {
	if len(s.records) > 0 {
		rec = s.records[0]
		s.records = s.records[1:]
		return true, rec, nil, nil
	}
	if s.sum != nil || s.err != nil {
		return true, nil, s.sum, s.err
	}
	return false, nil, nil, nil
}

func (s *stream) Err() error {
	return s.err
}

// openstreams tracks which stream is currently receiving PULLed records on
// a protoV5 connection (at most one at a time) plus any streams paused to let
// another one become current.
type openstreams struct {
	curr   *stream
	paused []*stream
	num    int
}

func (o *openstreams) reset() {
	o.curr = nil
	o.paused = nil
	o.num = 0
}

func (o *openstreams) attach(s *stream) {
	o.curr = s
	o.num++
}

// detach fails every open stream except the given one (nil affects all).
func (o *openstreams) detach(except *stream, err error) {
	if o.curr != nil && o.curr != except {
		o.curr.err = err
	}
	for _, p := range o.paused {
		if p != except {
			p.err = err
		}
	}
	o.curr = nil
	o.paused = nil
	o.num = 0
}

func (o *openstreams) remove(s *stream) {
	if o.curr == s {
		o.curr = nil
	}
	for i, p := range o.paused {
		if p == s {
			o.paused = append(o.paused[:i], o.paused[i+1:]...)
			break
		}
	}
	if o.num > 0 {
		o.num--
	}
}

func (o *openstreams) pause() {
	if o.curr == nil {
		return
	}
	o.paused = append(o.paused, o.curr)
	o.curr = nil
}

func (o *openstreams) resume(s *stream) {
	for i, p := range o.paused {
		if p == s {
			o.paused = append(o.paused[:i], o.paused[i+1:]...)
			break
		}
	}
	o.curr = s
}

func (o *openstreams) getUnsafe(handle idb.StreamHandle) (*stream, error) {
	s, ok := handle.(*stream)
	if !ok || s == nil {
		return nil, errors.New("bolt: invalid stream handle")
	}
	return s, nil
}

func (o *openstreams) isSafe(s *stream) error {
	if s == o.curr {
		return nil
	}
	for _, p := range o.paused {
		if p == s {
			return nil
		}
	}
	return errors.New("bolt: stream does not belong to this connection or scope")
}
