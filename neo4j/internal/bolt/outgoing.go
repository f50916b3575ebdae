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
	"net"

	"github.com/boltgraph/go-driver/neo4j/internal/packstream"
	"github.com/boltgraph/go-driver/neo4j/log"
)

// outgoing serializes and frames requests before they hit the wire,
// keeping value packing and message framing as separate concerns.
type outgoing struct {
	chunker    *chunker
	packer     packstream.Packer
	onErr      func(error)
	boltLogger log.BoltLogger
	useUtc     bool
}

func (o *outgoing) appendMsg(sig byte, fields ...any) {
	o.packer.Reset()
	o.packer.PackStructHeader(len(fields), sig)
	for _, f := range fields {
		if err := o.packer.PackAny(f); err != nil {
			o.onErr(err)
			return
		}
	}
	o.chunker.add(o.packer.Bytes())
}

func (o *outgoing) appendHello(hello map[string]any) {
	o.appendMsg(msgHello, hello)
}

func (o *outgoing) appendLogon(auth map[string]any) {
	o.appendMsg(msgLogon, auth)
}

func (o *outgoing) appendBegin(meta map[string]any) {
	o.appendMsg(msgBegin, meta)
}

func (o *outgoing) appendCommit() {
	o.appendMsg(msgCommit)
}

func (o *outgoing) appendRollback() {
	o.appendMsg(msgRollback)
}

func (o *outgoing) appendRun(cypher string, params map[string]any, meta map[string]any) {
	if params == nil {
		params = map[string]any{}
	}
	if meta == nil {
		meta = map[string]any{}
	}
	o.appendMsg(msgRun, cypher, params, meta)
}

func (o *outgoing) appendPullN(n int) {
	o.appendMsg(msgPull, map[string]any{"n": int64(n)})
}

func (o *outgoing) appendPullNQid(n int, qid int64) {
	o.appendMsg(msgPull, map[string]any{"n": int64(n), "qid": qid})
}

func (o *outgoing) appendDiscardN(n int) {
	o.appendMsg(msgDiscard, map[string]any{"n": int64(n)})
}

func (o *outgoing) appendDiscardNQid(n int, qid int64) {
	o.appendMsg(msgDiscard, map[string]any{"n": int64(n), "qid": qid})
}

func (o *outgoing) appendReset() {
	o.appendMsg(msgReset)
}

func (o *outgoing) appendGoodbye() {
	o.appendMsg(msgGoodbye)
}

func (o *outgoing) appendRoute(routingContext map[string]string, bookmarks []string, extras map[string]any) {
	ctx := make(map[string]any, len(routingContext))
	for k, v := range routingContext {
		ctx[k] = v
	}
	bms := make([]any, len(bookmarks))
	for i, b := range bookmarks {
		bms[i] = b
	}
	o.appendMsg(msgRoute, ctx, bms, extras)
}

// send flushes everything appended so far to conn.
func (o *outgoing) send(conn net.Conn) {
	if len(o.chunker.out) == 0 {
		return
	}
	_, err := conn.Write(o.chunker.out)
	o.chunker.reset()
	if err != nil {
		o.onErr(err)
	}
}

func (o *outgoing) isEmpty() bool {
	return len(o.chunker.out) == 0
}
