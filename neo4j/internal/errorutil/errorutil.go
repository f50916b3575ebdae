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

// Package errorutil centralizes the error-message constants and the
// classification rules used to decide fatality and retriability.
package errorutil

import "github.com/boltgraph/go-driver/neo4j/db"

const (
	InvalidTransactionError = "trying to use a transaction that has been committed, rolled back or belongs to a different connection"
	PoolClosedError         = "connection pool is closed"
	ConnectionDeadError     = "connection is no longer usable"
)

// fatalCategories lists Neo4jError classifications/categories that always
// move a connection to a dead/unrecoverable state, as opposed to a merely
// failed-until-reset state.
var fatalCategories = map[string]bool{
	"DatabaseError": true,
	"Security":      true,
}

// IsFatal reports whether a server error should kill the connection rather
// than just move it to a failed-needs-reset state.
func IsFatal(err *db.Neo4jError) bool {
	if err == nil {
		return false
	}
	if fatalCategories[err.Classification()] || fatalCategories[err.Category()] {
		return true
	}
	return false
}

// transientClassification is the only classification this package treats as
// retriable at the transaction level (§7).
const transientClassification = "TransientError"

// clusterCategories are Client-classified categories that indicate a
// topology change rather than a genuine client mistake.
var clusterCategories = map[string]bool{
	"Cluster": true,
	"Routing": true,
}

// IsTransient reports whether the server classified this error as
// transient (deadlocks, transient timeouts, etc).
func IsTransient(err *db.Neo4jError) bool {
	return err != nil && err.Classification() == transientClassification
}

// IsCluster reports whether this is a Client error about cluster topology
// (NotALeader, Forbidden-on-read-replica, RoutingTableChanged, ...).
func IsCluster(err *db.Neo4jError) bool {
	return err != nil && err.Classification() == "ClientError" && clusterCategories[err.Category()]
}

// nonRetriableClassifications covers errors must never be
// retried: client mistakes, security errors, syntax errors, constraint
// violations, missing databases.
var nonRetriableClassifications = map[string]bool{
	"ClientError": true,
	"Security":    true,
}

// IsRetriable implements the §4.7/§7 retriable(e) predicate for server
// errors only; connectivity/timeout errors are handled by their own Go
// types in the retry package.
func IsRetriable(err *db.Neo4jError) bool {
	if err == nil {
		return false
	}
	if IsCluster(err) {
		return true
	}
	if IsTransient(err) {
		return true
	}
	if nonRetriableClassifications[err.Classification()] {
		return false
	}
	return false
}
