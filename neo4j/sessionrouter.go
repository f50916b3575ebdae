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

import (
	"context"

	"github.com/boltgraph/go-driver/neo4j/log"
)

// sessionRouter is the routing-table surface a session needs: resolving
// readers/writers/the default database by name, and invalidating entries
// that a connectivity failure has shown to be stale. internal/router.Router
// satisfies this by method set alone, with no explicit reference back.
type sessionRouter interface {
	Readers(ctx context.Context, bookmarks []string, database string, boltLogger log.BoltLogger) ([]string, error)
	Writers(ctx context.Context, bookmarks []string, database string, boltLogger log.BoltLogger) ([]string, error)
	GetNameOfDefaultDatabase(ctx context.Context, bookmarks []string, impersonatedUser string, boltLogger log.BoltLogger) (string, error)
	InvalidateWriter(ctx context.Context, database, server string) error
	InvalidateReader(ctx context.Context, database, server string) error
	CleanUp(ctx context.Context) error
}

// directRouter is used for single-instance (non-routing) connections: every
// role resolves to the one configured address, and there is no table to
// invalidate or clean up.
type directRouter struct {
	address string
}

func (r *directRouter) Readers(context.Context, []string, string, log.BoltLogger) ([]string, error) {
	return []string{r.address}, nil
}

func (r *directRouter) Writers(context.Context, []string, string, log.BoltLogger) ([]string, error) {
	return []string{r.address}, nil
}

func (r *directRouter) GetNameOfDefaultDatabase(context.Context, []string, string, log.BoltLogger) (string, error) {
	return "", nil
}

func (r *directRouter) InvalidateWriter(context.Context, string, string) error { return nil }
func (r *directRouter) InvalidateReader(context.Context, string, string) error { return nil }
func (r *directRouter) CleanUp(context.Context) error                         { return nil }
