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

// Package bolt implements the Bolt connection state machine: handshake/
// version negotiation, authentication, request pipelining, and
// streaming-result demand control over the wire codec defined in package
// packstream.
package bolt

// Request message signatures.
const (
	msgHello    byte = 0x01
	msgLogon    byte = 0x6A
	msgGoodbye  byte = 0x02
	msgReset    byte = 0x0F
	msgRun      byte = 0x10
	msgBegin    byte = 0x11
	msgCommit   byte = 0x12
	msgRollback byte = 0x13
	msgDiscard  byte = 0x2F
	msgPull     byte = 0x3F
	msgRoute    byte = 0x66
)

// Response message signatures.
const (
	msgSuccess byte = 0x70
	msgRecord  byte = 0x71
	msgIgnored byte = 0x7E
	msgFailure byte = 0x7F
)

// handshakeMagic is the 4-byte preamble sent at the start of every Bolt
// connection, before any protocol version has been agreed.
var handshakeMagic = [4]byte{0x60, 0x60, 0xB0, 0x17}

const readTimeoutHintName = "connection.recv_timeout_seconds"
