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

// AccessMode selects which cluster role (reader or writer) a session's
// queries should be routed to.
type AccessMode int

const (
	AccessModeWrite AccessMode = iota
	AccessModeRead
)

// Bookmarks causally chain transactions: a session configured with the
// bookmarks from a prior transaction is guaranteed to see its effects.
type Bookmarks []string

// BookmarksFromRawValues builds a Bookmarks value from individual bookmark
// strings, filtering out any empty ones.
func BookmarksFromRawValues(values ...string) Bookmarks {
	out := make(Bookmarks, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// CombineBookmarks merges several sessions' bookmarks into one set to seed
// a new session that must see all of their effects.
func CombineBookmarks(sets ...Bookmarks) Bookmarks {
	var out Bookmarks
	for _, set := range sets {
		out = append(out, set...)
	}
	return out
}
