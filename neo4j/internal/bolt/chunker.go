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

import "math"

const maxChunkSize = math.MaxUint16

// chunker frames one or more logical messages into the on-wire chunk
// format: uint16 length + payload, repeated, terminated by a zero-length
// chunk.
type chunker struct {
	out []byte
}

func newChunker() *chunker {
	return &chunker{}
}

// reset clears any buffered, unsent bytes.
func (c *chunker) reset() {
	c.out = c.out[:0]
}

// add appends one complete logical message, splitting it into
// maxChunkSize-sized chunks and terminating it with a zero-length chunk.
func (c *chunker) add(msg []byte) {
	for len(msg) > 0 {
		n := len(msg)
		if n > maxChunkSize {
			n = maxChunkSize
		}
		c.putUint16(uint16(n))
		c.out = append(c.out, msg[:n]...)
		msg = msg[n:]
	}
	c.putUint16(0)
}

func (c *chunker) putUint16(v uint16) {
	c.out = append(c.out, byte(v>>8), byte(v))
}
