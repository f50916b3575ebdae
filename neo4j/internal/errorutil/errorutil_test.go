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

package errorutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boltgraph/go-driver/neo4j/db"
)

func TestIsFatalForDatabaseAndSecurityErrors(t *testing.T) {
	assert.True(t, IsFatal(&db.Neo4jError{Code: "Neo.DatabaseError.General.UnknownError"}))
	assert.True(t, IsFatal(&db.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized"}))
	assert.False(t, IsFatal(&db.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError"}))
	assert.False(t, IsFatal(nil))
}

func TestIsClusterForRoutingAndNotALeader(t *testing.T) {
	assert.True(t, IsCluster(&db.Neo4jError{Code: "Neo.ClientError.Cluster.NotALeader"}))
	assert.True(t, IsCluster(&db.Neo4jError{Code: "Neo.ClientError.Routing.RoutingTableChanged"}))
	assert.False(t, IsCluster(&db.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError"}))
}

func TestIsRetriableForTransientAndClusterErrors(t *testing.T) {
	assert.True(t, IsRetriable(&db.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected"}))
	assert.True(t, IsRetriable(&db.Neo4jError{Code: "Neo.ClientError.Cluster.NotALeader"}))
	assert.False(t, IsRetriable(&db.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError"}))
	assert.False(t, IsRetriable(&db.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized"}))
	assert.False(t, IsRetriable(nil))
}

func TestNeo4jErrorIsAuthenticationFailed(t *testing.T) {
	assert.True(t, (&db.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized"}).IsAuthenticationFailed())
	assert.False(t, (&db.Neo4jError{Code: "Neo.ClientError.Security.Forbidden"}).IsAuthenticationFailed())
}
