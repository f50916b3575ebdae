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
	"io"
	"net"
	"time"
)

// incoming reassembles chunked messages off the wire and hands
// the complete payload to the hydrator.
type incoming struct {
	buf             []byte
	hyd             hydrator
	connReadTimeout time.Duration
}

// next blocks until one complete logical message has arrived, applying
// connReadTimeout as a read deadline when it has been set to a positive
// value by a connection.recv_timeout_seconds hint.
func (in *incoming) next(conn net.Conn) (any, error) {
	if in.connReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(in.connReadTimeout))
	} else {
		_ = conn.SetReadDeadline(time.Time{})
	}
	msg, err := in.readMessage(conn)
	if err != nil {
		return nil, err
	}
	return in.hyd.hydrate(msg)
}

func (in *incoming) readMessage(conn net.Conn) ([]byte, error) {
	in.buf = in.buf[:0]
	var header [2]byte
	for {
		if _, err := io.ReadFull(conn, header[:]); err != nil {
			return nil, err
		}
		n := int(header[0])<<8 | int(header[1])
		if n == 0 {
			if len(in.buf) == 0 {
				// Consecutive NOOP chunk, keep waiting for an actual message.
				continue
			}
			return in.buf, nil
		}
		start := len(in.buf)
		in.buf = append(in.buf, make([]byte, n)...)
		if _, err := io.ReadFull(conn, in.buf[start:]); err != nil {
			return nil, err
		}
	}
}
