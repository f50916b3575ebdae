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

import "context"

// Transaction is the context-less counterpart of ExplicitTransaction, used
// by the legacy Session API.
type Transaction interface {
	Run(cypher string, params map[string]any) (Result, error)
	Commit() error
	Rollback() error
	Close() error
}

// Result is the context-less counterpart of ResultWithContext.
type Result = ResultWithContext

// Session is the legacy, context-less API wrapped around a
// SessionWithContext; every call uses context.Background().
type Session interface {
	LastBookmarks() Bookmarks
	BeginTransaction(configurers ...func(*TransactionConfig)) (Transaction, error)
	ExecuteRead(work TransactionWork, configurers ...func(*TransactionConfig)) (any, error)
	ExecuteWrite(work TransactionWork, configurers ...func(*TransactionConfig)) (any, error)
	Run(cypher string, params map[string]any, configurers ...func(*TransactionConfig)) (Result, error)
	Close() error
}

type session struct {
	delegate SessionWithContext
}

func (s *session) LastBookmarks() Bookmarks {
	return s.delegate.LastBookmarks()
}

func (s *session) BeginTransaction(configurers ...func(*TransactionConfig)) (Transaction, error) {
	tx, err := s.delegate.BeginTransaction(context.Background(), configurers...)
	if err != nil {
		return nil, err
	}
	return &legacyTransaction{ctx: context.Background(), tx: tx}, nil
}

func (s *session) ExecuteRead(work TransactionWork, configurers ...func(*TransactionConfig)) (any, error) {
	return s.delegate.ExecuteRead(context.Background(), adaptWork(work), configurers...)
}

func (s *session) ExecuteWrite(work TransactionWork, configurers ...func(*TransactionConfig)) (any, error) {
	return s.delegate.ExecuteWrite(context.Background(), adaptWork(work), configurers...)
}

func (s *session) Run(cypher string, params map[string]any, configurers ...func(*TransactionConfig)) (Result, error) {
	return s.delegate.Run(context.Background(), cypher, params, configurers...)
}

func (s *session) Close() error {
	return s.delegate.Close(context.Background())
}

func adaptWork(work TransactionWork) ManagedTransactionWork {
	return func(tx ManagedTransaction) (any, error) {
		return work(&legacyManagedTransaction{ctx: context.Background(), tx: tx})
	}
}

type legacyManagedTransaction struct {
	ctx context.Context
	tx  ManagedTransaction
}

func (t *legacyManagedTransaction) Run(cypher string, params map[string]any) (Result, error) {
	return t.tx.Run(t.ctx, cypher, params)
}

type legacyTransaction struct {
	ctx context.Context
	tx  ExplicitTransaction
}

func (t *legacyTransaction) Run(cypher string, params map[string]any) (Result, error) {
	return t.tx.Run(t.ctx, cypher, params)
}

func (t *legacyTransaction) Commit() error {
	return t.tx.Commit(t.ctx)
}

func (t *legacyTransaction) Rollback() error {
	return t.tx.Rollback(t.ctx)
}

func (t *legacyTransaction) Close() error {
	return t.tx.Close(t.ctx)
}

// erroredSession is returned by the legacy API when session creation itself
// failed, so every call surfaces the same error instead of panicking on a
// nil delegate.
type erroredSession struct {
	err error
}

func (s *erroredSession) LastBookmarks() Bookmarks { return nil }
func (s *erroredSession) BeginTransaction(...func(*TransactionConfig)) (Transaction, error) {
	return nil, s.err
}
func (s *erroredSession) ExecuteRead(TransactionWork, ...func(*TransactionConfig)) (any, error) {
	return nil, s.err
}
func (s *erroredSession) ExecuteWrite(TransactionWork, ...func(*TransactionConfig)) (any, error) {
	return nil, s.err
}
func (s *erroredSession) Run(string, map[string]any, ...func(*TransactionConfig)) (Result, error) {
	return nil, s.err
}
func (s *erroredSession) Close() error { return s.err }
