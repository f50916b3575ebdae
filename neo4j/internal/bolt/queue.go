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
	"context"
	"fmt"
	"net"
	"time"

	"github.com/boltgraph/go-driver/neo4j/db"
	"github.com/boltgraph/go-driver/neo4j/log"
)

// messageQueue pipelines requests and dispatches each
// response, in order, to the handler registered for the request that
// produced it.
type messageQueue struct {
	conn      net.Conn
	in        *incoming
	out       *outgoing
	onNext    func()
	onNextErr func(error)
	handlers  []responseHandler
	logId     string
}

func newMessageQueue(conn net.Conn, in *incoming, out *outgoing, onNext func(), onNextErr func(error)) messageQueue {
	return messageQueue{
		conn:      conn,
		in:        in,
		out:       out,
		onNext:    onNext,
		onNextErr: onNextErr,
	}
}

func (q *messageQueue) pushBack(h responseHandler) {
	q.handlers = append(q.handlers, h)
}

func (q *messageQueue) pushFront(h responseHandler) {
	q.handlers = append([]responseHandler{h}, q.handlers...)
}

func (q *messageQueue) popFront() responseHandler {
	h := q.handlers[0]
	q.handlers = q.handlers[1:]
	return h
}

func (q *messageQueue) isEmpty() bool {
	return len(q.handlers) == 0
}

func (q *messageQueue) appendHello(hello map[string]any, h responseHandler) {
	q.out.appendHello(hello)
	q.pushBack(h)
}

func (q *messageQueue) appendLogon(auth map[string]any, h responseHandler) {
	q.out.appendLogon(auth)
	q.pushBack(h)
}

func (q *messageQueue) appendBegin(meta map[string]any, h responseHandler) {
	q.out.appendBegin(meta)
	q.pushBack(h)
}

func (q *messageQueue) appendCommit(h responseHandler) {
	q.out.appendCommit()
	q.pushBack(h)
}

func (q *messageQueue) appendRollback(h responseHandler) {
	q.out.appendRollback()
	q.pushBack(h)
}

func (q *messageQueue) appendRun(cypher string, params, meta map[string]any, h responseHandler) {
	q.out.appendRun(cypher, params, meta)
	q.pushBack(h)
}

func (q *messageQueue) appendPullN(n int, h responseHandler) {
	q.out.appendPullN(n)
	q.pushBack(h)
}

func (q *messageQueue) appendPullNQid(n int, qid int64, h responseHandler) {
	q.out.appendPullNQid(n, qid)
	q.pushBack(h)
}

func (q *messageQueue) appendDiscardN(n int, h responseHandler) {
	q.out.appendDiscardN(n)
	q.pushBack(h)
}

func (q *messageQueue) appendDiscardNQid(n int, qid int64, h responseHandler) {
	q.out.appendDiscardNQid(n, qid)
	q.pushBack(h)
}

func (q *messageQueue) appendReset(h responseHandler) {
	q.out.appendReset()
	q.pushBack(h)
}

func (q *messageQueue) appendGoodbye() {
	q.out.appendGoodbye()
}

func (q *messageQueue) appendRoute(routingContext map[string]string, bookmarks []string, extras map[string]any, h responseHandler) {
	q.out.appendRoute(routingContext, bookmarks, extras)
	q.pushBack(h)
}

// send flushes everything appended so far. Write errors are reported
// through out.onErr, already wired by the connection to its own setError.
func (q *messageQueue) send(ctx context.Context) {
	if dl, ok := ctx.Deadline(); ok {
		_ = q.conn.SetWriteDeadline(dl)
	} else {
		_ = q.conn.SetWriteDeadline(time.Time{})
	}
	q.out.send(q.conn)
}

// receive processes exactly one response off the wire, dispatching it to
// the handler registered for the oldest outstanding request.
func (q *messageQueue) receive(ctx context.Context) error {
	if q.isEmpty() {
		return fmt.Errorf("bolt: no handler registered for next response")
	}
	if dl, ok := ctx.Deadline(); ok && q.in.connReadTimeout <= 0 {
		_ = q.conn.SetReadDeadline(dl)
	}
	msg, err := q.in.next(q.conn)
	if err != nil {
		q.onNextErr(err)
		return err
	}

	h := q.popFront()
	switch m := msg.(type) {
	case *db.Record:
		if h.onRecord != nil {
			h.onRecord(m)
		}
	case *success:
		if h.onSuccess != nil {
			h.onSuccess(m)
		}
	case *ignored:
		if h.onIgnored != nil {
			h.onIgnored(m)
		}
	case *db.Neo4jError:
		if h.onFailure != nil {
			h.onFailure(m)
		}
	default:
		if h.onUnknown != nil {
			h.onUnknown(msg)
		}
	}
	q.onNext()
	return nil
}

// receiveAll drains every outstanding response.
func (q *messageQueue) receiveAll(ctx context.Context) error {
	for !q.isEmpty() {
		if err := q.receive(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (q *messageQueue) setBoltLogger(logger log.BoltLogger) {
	q.in.hyd.boltLogger = logger
	q.out.boltLogger = logger
}

func (q *messageQueue) setLogId(id string) {
	q.logId = id
}
