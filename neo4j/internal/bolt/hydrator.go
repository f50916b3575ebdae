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
	"fmt"

	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
	"github.com/boltgraph/go-driver/neo4j/db"
	"github.com/boltgraph/go-driver/neo4j/internal/packstream"
	"github.com/boltgraph/go-driver/neo4j/log"
)

// success is the decoded metadata of a SUCCESS response. Only the keys
// meaningful to at least one request type are parsed out by name; the rest
// of the raw metadata is kept around for Summary/counters.
type success struct {
	fields             []string
	qid                int64
	tfirst             int64
	connectionId       string
	server             string
	configurationHints map[string]any
	bookmark           string
	hasMore            bool
	routingTable       *idb.RoutingTable
	raw                map[string]any
}

func newSuccess(meta map[string]any) *success {
	s := &success{qid: -1, raw: meta}
	if meta == nil {
		return s
	}
	if fs, ok := meta["fields"].([]any); ok {
		s.fields = make([]string, len(fs))
		for i, f := range fs {
			s.fields[i], _ = f.(string)
		}
	}
	if qid, ok := asInt64(meta["qid"]); ok {
		s.qid = qid
	}
	if tf, ok := asInt64(meta["t_first"]); ok {
		s.tfirst = tf
	}
	if v, ok := meta["connection_id"].(string); ok {
		s.connectionId = v
	}
	if v, ok := meta["server"].(string); ok {
		s.server = v
	}
	if v, ok := meta["hints"].(map[string]any); ok {
		s.configurationHints = v
	}
	if v, ok := meta["bookmark"].(string); ok {
		s.bookmark = v
	}
	if v, ok := meta["has_more"].(bool); ok {
		s.hasMore = v
	}
	if rt, ok := meta["rt"].(map[string]any); ok {
		s.routingTable = parseRoutingTable(rt)
	}
	return s
}

func (s *success) summary() *db.Summary {
	sum := &db.Summary{Bookmark: s.bookmark}
	if st, ok := s.raw["type"].(string); ok {
		sum.StmtType = st
	}
	if tl, ok := asInt64(s.raw["t_last"]); ok {
		sum.TLast = tl
	}
	if dbName, ok := s.raw["db"].(string); ok {
		sum.Database = dbName
	}
	return sum
}

func parseRoutingTable(rt map[string]any) *idb.RoutingTable {
	table := &idb.RoutingTable{}
	if dbName, ok := rt["db"].(string); ok {
		table.DatabaseName = dbName
	}
	if ttl, ok := asInt64(rt["ttl"]); ok {
		table.TimeToLive = int(ttl)
	}
	servers, _ := rt["servers"].([]any)
	for _, raw := range servers {
		srv, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		role, _ := srv["role"].(string)
		var addrs []string
		if as, ok := srv["addresses"].([]any); ok {
			for _, a := range as {
				if s, ok := a.(string); ok {
					addrs = append(addrs, s)
				}
			}
		}
		switch role {
		case "READ":
			table.Readers = addrs
		case "WRITE":
			table.Writers = addrs
		case "ROUTE":
			table.Routers = addrs
		}
	}
	return table
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	}
	return 0, false
}

// ignored marks an IGNORED response.
type ignored struct{}

// hydrator turns a complete dechunked message buffer into one of
// *success, *ignored, *db.Neo4jError or *db.Record.
type hydrator struct {
	boltLogger log.BoltLogger
	boltMajor  int
	useUtc     bool
	unpacker   packstream.Unpacker
}

func (h *hydrator) hydrate(buf []byte) (any, error) {
	h.unpacker.Reset(buf)
	v, err := h.unpacker.UnpackAny()
	if err != nil {
		return nil, err
	}
	st, ok := v.(*packstream.Struct)
	if !ok {
		return nil, fmt.Errorf("bolt: expected a structure response, got %T", v)
	}
	switch st.Sig {
	case msgSuccess:
		meta, _ := fieldAsMap(st, 0)
		return newSuccess(meta), nil
	case msgRecord:
		values, _ := st.Fields[0].([]any)
		return &db.Record{Values: values}, nil
	case msgIgnored:
		return &ignored{}, nil
	case msgFailure:
		meta, _ := fieldAsMap(st, 0)
		code, _ := meta["code"].(string)
		msg, _ := meta["message"].(string)
		return &db.Neo4jError{Code: code, Msg: msg}, nil
	default:
		return nil, fmt.Errorf("bolt: unknown response signature 0x%02X", st.Sig)
	}
}

func fieldAsMap(st *packstream.Struct, i int) (map[string]any, bool) {
	if i >= len(st.Fields) {
		return nil, false
	}
	m, ok := st.Fields[i].(map[string]any)
	return m, ok
}
