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

import "github.com/boltgraph/go-driver/neo4j/db"

// ServerInfo describes the server a session most recently talked to.
type ServerInfo interface {
	Address() string
	Agent() string
	ProtocolVersion() db.ProtocolVersion
}

type simpleServerInfo struct {
	address         string
	agent           string
	protocolVersion db.ProtocolVersion
}

func (i *simpleServerInfo) Address() string                    { return i.address }
func (i *simpleServerInfo) Agent() string                       { return i.agent }
func (i *simpleServerInfo) ProtocolVersion() db.ProtocolVersion { return i.protocolVersion }
