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

import "github.com/boltgraph/go-driver/neo4j/db"

// responseHandler holds the callbacks to invoke for whichever response
// variant arrives next on the wire for a given pending request. Only the
// callback matching the message actually received is invoked; a nil
// callback for an unexpected but benign variant is simply a no-op.
type responseHandler struct {
	onSuccess func(*success)
	onRecord  func(*db.Record)
	onIgnored func(*ignored)
	onFailure func(*db.Neo4jError)
	onUnknown func(any)
}

func onSuccessNoOp(*success) {}

func onIgnoredNoOp(*ignored) {}
