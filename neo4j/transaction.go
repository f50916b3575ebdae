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
	"time"

	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
)

// TransactionConfig holds the per-transaction extras sent on BEGIN or on an
// auto-commit RUN: timeout, metadata, and (indirectly, through session
// configuration) the access mode and impersonated user.
type TransactionConfig struct {
	Timeout  time.Duration
	Metadata map[string]any
}

// WithTxTimeout overrides the server-side transaction timeout.
func WithTxTimeout(timeout time.Duration) func(*TransactionConfig) {
	return func(c *TransactionConfig) { c.Timeout = timeout }
}

// WithTxMetadata attaches metadata visible in query logs and listings.
func WithTxMetadata(metadata map[string]any) func(*TransactionConfig) {
	return func(c *TransactionConfig) { c.Metadata = metadata }
}

// ManagedTransaction is the handle passed into ExecuteRead/ExecuteWrite
// work functions: it can run statements but, unlike ExplicitTransaction,
// cannot be committed or rolled back directly - the retry loop owns that.
type ManagedTransaction interface {
	Run(ctx context.Context, cypher string, params map[string]any) (ResultWithContext, error)
}

// ExplicitTransaction is a transaction begun with SessionWithContext.BeginTransaction:
// the caller drives Commit/Rollback/Close explicitly.
type ExplicitTransaction interface {
	ManagedTransaction
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Close(ctx context.Context) error
}

type managedTransaction struct {
	conn      idb.Connection
	fetchSize int
	txHandle  idb.TxHandle
}

func (tx *managedTransaction) Run(ctx context.Context, cypher string, params map[string]any) (ResultWithContext, error) {
	stream, err := tx.conn.RunTx(ctx, tx.txHandle, idb.Command{Cypher: cypher, Params: params, FetchSize: tx.fetchSize})
	if err != nil {
		return nil, wrapError(err)
	}
	return newResultWithContext(tx.conn, stream, cypher, params), nil
}

type explicitTransaction struct {
	conn      idb.Connection
	fetchSize int
	txHandle  idb.TxHandle
	onClosed  func()
	closed    bool
}

func (tx *explicitTransaction) Run(ctx context.Context, cypher string, params map[string]any) (ResultWithContext, error) {
	stream, err := tx.conn.RunTx(ctx, tx.txHandle, idb.Command{Cypher: cypher, Params: params, FetchSize: tx.fetchSize})
	if err != nil {
		return nil, wrapError(err)
	}
	return newResultWithContext(tx.conn, stream, cypher, params), nil
}

func (tx *explicitTransaction) Commit(ctx context.Context) error {
	if tx.closed {
		return &UsageError{Message: "transaction already closed"}
	}
	err := tx.conn.TxCommit(ctx, tx.txHandle)
	tx.finish()
	return wrapError(err)
}

func (tx *explicitTransaction) Rollback(ctx context.Context) error {
	if tx.closed {
		return &UsageError{Message: "transaction already closed"}
	}
	err := tx.conn.TxRollback(ctx, tx.txHandle)
	tx.finish()
	return wrapError(err)
}

// Close rolls back an explicit transaction that was never committed nor
// rolled back by the caller; a no-op once either has happened.
func (tx *explicitTransaction) Close(ctx context.Context) error {
	if tx.closed {
		return nil
	}
	err := tx.conn.TxRollback(ctx, tx.txHandle)
	tx.finish()
	return wrapError(err)
}

func (tx *explicitTransaction) finish() {
	if tx.closed {
		return
	}
	tx.closed = true
	if tx.onClosed != nil {
		tx.onClosed()
	}
}

// autocommitTransaction tracks the one auto-commit stream a session may
// have in flight, so a subsequent Run/BeginTransaction/Close knows to
// drain and release it first.
type autocommitTransaction struct {
	conn     idb.Connection
	res      ResultWithContext
	onClosed func()
	closed   bool
}

func (tx *autocommitTransaction) done(ctx context.Context) {
	tx.closeUp(ctx)
}

func (tx *autocommitTransaction) discard(ctx context.Context) {
	tx.closeUp(ctx)
}

func (tx *autocommitTransaction) closeUp(ctx context.Context) {
	if tx.closed {
		return
	}
	tx.closed = true
	_ = tx.res.Discard(ctx)
	if tx.onClosed != nil {
		tx.onClosed()
	}
}
