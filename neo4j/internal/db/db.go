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

// Package db defines the internal contract between the connection layer
// (Bolt, and in the future HTTP) and the session/pool/routing layers above
// it. Nothing in this package knows about wire formats.
package db

import (
	"context"
	"time"

	"github.com/boltgraph/go-driver/neo4j/db"
)

// AccessMode selects which cluster role a connection/transaction targets.
type AccessMode int

const (
	WriteMode AccessMode = iota
	ReadMode
)

// DefaultDatabase is the sentinel meaning "use the server's default
// database", i.e. omit the `db` extra on the wire.
const DefaultDatabase = ""

// TxHandle identifies an open explicit or auto-commit transaction on a
// specific connection. It is only meaningful in combination with the
// connection that issued it.
type TxHandle int64

// StreamHandle identifies a RUN result stream on a specific connection.
type StreamHandle any

// NotificationConfig carries the optional GQL-status notification filter
// negotiated at HELLO/BEGIN time. A zero value requests server defaults.
type NotificationConfig struct {
	MinSeverity      string
	DisabledCategories []string
}

// ToMeta writes the non-empty fields of the config into a HELLO/BEGIN
// metadata map, leaving it untouched when the config asks for server
// defaults.
func (n NotificationConfig) ToMeta(meta map[string]any) {
	if n.MinSeverity != "" {
		meta["notifications_minimum_severity"] = n.MinSeverity
	}
	if len(n.DisabledCategories) > 0 {
		meta["notifications_disabled_categories"] = n.DisabledCategories
	}
}

// TxConfig carries the per-transaction extras sent on BEGIN or on an
// auto-commit RUN.
type TxConfig struct {
	Mode               AccessMode
	Bookmarks          []string
	Timeout            time.Duration
	Meta               map[string]any
	ImpersonatedUser   string
	NotificationConfig NotificationConfig
}

// Command is a single statement to RUN: cypher text, parameters, and the
// fetch size to request for its first PULL.
type Command struct {
	Cypher    string
	Params    map[string]any
	FetchSize int
}

// RoutingTable is the per-database server topology: readers, writers and
// routers plus TTL bookkeeping.
type RoutingTable struct {
	DatabaseName string
	TimeToLive   int // seconds, as reported by the server
	FetchedAt    time.Time
	Readers      []string
	Writers      []string
	Routers      []string
}

// Stale reports whether this table must be refreshed before its next use,
// true once now - fetched-at >= ttl, or once it has no routers left.
func (t *RoutingTable) Stale(now time.Time) bool {
	if t == nil {
		return true
	}
	if len(t.Routers) == 0 {
		return true
	}
	expiry := t.FetchedAt.Add(time.Duration(t.TimeToLive) * time.Second)
	return !now.Before(expiry)
}

// DatabaseSelector is implemented by connections whose protocol version
// supports multi-database selection (`SelectDatabase`).
type DatabaseSelector interface {
	SelectDatabase(database string)
}

// Connection is the contract a wire protocol implementation (Bolt today,
// HTTP as a future collaborator) exposes to the pool/session/cursor layers.
type Connection interface {
	TxBegin(ctx context.Context, txConfig TxConfig) (TxHandle, error)
	TxCommit(ctx context.Context, tx TxHandle) error
	TxRollback(ctx context.Context, tx TxHandle) error

	Run(ctx context.Context, cmd Command, txConfig TxConfig) (StreamHandle, error)
	RunTx(ctx context.Context, tx TxHandle, cmd Command) (StreamHandle, error)

	Keys(stream StreamHandle) ([]string, error)
	Next(ctx context.Context, stream StreamHandle) (*db.Record, *db.Summary, error)
	Consume(ctx context.Context, stream StreamHandle) (*db.Summary, error)
	Buffer(ctx context.Context, stream StreamHandle) error

	Bookmark() string
	ServerName() string
	ServerVersion() string
	Version() db.ProtocolVersion

	IsAlive() bool
	HasFailed() bool
	Birthdate() time.Time
	IdleDate() time.Time

	Reset(ctx context.Context)
	ForceReset(ctx context.Context)
	Close(ctx context.Context)

	GetRoutingTable(ctx context.Context, routingContext map[string]string, bookmarks []string, database, impersonatedUser string) (*RoutingTable, error)
}
