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

// Package db holds the wire-boundary value and result shapes shared between
// the Bolt connection implementation and the session/cursor layer above it.
package db

import "fmt"

// ProtocolVersion is the negotiated Bolt protocol version for a connection.
type ProtocolVersion struct {
	Major int
	Minor int
}

func (p ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", p.Major, p.Minor)
}

// Record is one row of a result, with Keys shared (not copied) across all
// records produced by the same RUN.
type Record struct {
	Values []any
	Keys   []string
}

// Get returns the value of the named field and whether it was found.
func (r *Record) Get(key string) (any, bool) {
	for i, k := range r.Keys {
		if k == key {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Summary is the terminal metadata of a stream: counters, timing, bookmark,
// routing/server info. Only the fields this driver's core needs are kept;
// richer per-statement counters are a formatter/domain-mapping concern and
// out of scope here.
type Summary struct {
	Bookmark    string
	StmtType    string
	TFirst      int64
	TLast       int64
	Database    string
	Agent       string
	Major       int
	Minor       int
	ServerName  string
	Notifications []Notification
}

// Notification is a server-side advisory (index hints, deprecation, etc.)
// attached to a query result.
type Notification struct {
	Code        string
	Title       string
	Description string
	Severity    string
	Category    string
}

// Neo4jError carries a server-reported (code, message) pair along with its
// classification, e.g. "Neo.ClientError.Security.Unauthorized".
type Neo4jError struct {
	Code    string
	Msg     string
	GqlCode string
}

func (e *Neo4jError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Classification returns the dot-separated segment of Code that follows the
// leading "Neo", e.g. "ClientError", "TransientError", "DatabaseError".
func (e *Neo4jError) Classification() string {
	return classificationOf(e.Code)
}

// Category returns the dot-separated segment of Code that follows the
// classification, e.g. "Cluster", "Security", "Transaction".
func (e *Neo4jError) Category() string {
	return categoryOf(e.Code)
}

// IsAuthenticationFailed reports whether this error indicates the
// credentials presented at HELLO/LOGON were rejected, as opposed to some
// other security failure (e.g. authorization) or an unrelated error.
func (e *Neo4jError) IsAuthenticationFailed() bool {
	return e.Category() == "Security" && specificOf(e.Code) == "Unauthorized"
}

func specificOf(code string) string {
	parts := splitCode(code)
	if len(parts) > 3 {
		return parts[3]
	}
	return ""
}

func classificationOf(code string) string {
	parts := splitCode(code)
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

func categoryOf(code string) string {
	parts := splitCode(code)
	if len(parts) > 2 {
		return parts[2]
	}
	return ""
}

func splitCode(code string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(code); i++ {
		if code[i] == '.' {
			parts = append(parts, code[start:i])
			start = i + 1
		}
	}
	parts = append(parts, code[start:])
	return parts
}
