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
	"fmt"
	"net"

	"github.com/boltgraph/go-driver/neo4j/db"
	"github.com/boltgraph/go-driver/neo4j/internal/errorutil"
)

// isFatalError reports whether a server error should kill the connection
// outright rather than merely leave it in the Failed state awaiting RESET.
func isFatalError(err *db.Neo4jError) bool {
	return errorutil.IsFatal(err)
}

// handleTerminatedContextError upgrades a raw I/O error into a more
// specific one when it was actually caused by a read/write deadline
// expiring, so callers see a timeout rather than a bare "use of closed
// network connection".
func handleTerminatedContextError(err error, conn net.Conn) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("bolt: connection to %s timed out: %w", conn.RemoteAddr(), err)
	}
	return nil
}
