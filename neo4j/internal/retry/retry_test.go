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

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/boltgraph/go-driver/neo4j/db"
	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
)

func newTestState(maxRetryTime time.Duration, maxDead int) *State {
	now := time.Now()
	return &State{
		MaxTransactionRetryTime: maxRetryTime,
		Now:                     func() time.Time { return now },
		Sleep:                   func(time.Duration) {},
		Throttle:                func() time.Duration { return 0 },
		MaxDeadConnections:      maxDead,
	}
}

func TestContinueAlwaysTriesFirstAttempt(t *testing.T) {
	s := newTestState(time.Second, 3)
	assert.True(t, s.Continue())
}

func TestContinueStopsAfterNonRetryableFailure(t *testing.T) {
	s := newTestState(time.Minute, 3)
	s.Continue()
	s.OnFailure(context.Background(), nil, &db.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError"}, false)
	assert.False(t, s.LastErrWasRetryable)
	assert.False(t, s.Continue())
}

func TestContinueRetriesOnTransientError(t *testing.T) {
	s := newTestState(time.Minute, 3)
	s.Continue()
	s.OnFailure(context.Background(), nil, &db.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected"}, false)
	assert.True(t, s.LastErrWasRetryable)
	assert.True(t, s.Continue())
}

func TestContinueStopsWhenBudgetElapsed(t *testing.T) {
	start := time.Now()
	tick := start
	s := &State{
		MaxTransactionRetryTime: time.Second,
		Now:                     func() time.Time { return tick },
		Sleep:                   func(time.Duration) {},
		Throttle:                func() time.Duration { return 0 },
	}
	s.Continue()
	s.OnFailure(context.Background(), nil, &db.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected"}, false)
	tick = start.Add(2 * time.Second)
	assert.False(t, s.Continue())
}

// fakeConn implements just enough of idb.Connection for OnFailure's
// ServerName lookup; every other method is an unused stub.
type fakeConn struct{ name string }

func fakeConnNamed(name string) idb.Connection { return &fakeConn{name: name} }

func (c *fakeConn) TxBegin(context.Context, idb.TxConfig) (idb.TxHandle, error) { return 0, nil }
func (c *fakeConn) TxCommit(context.Context, idb.TxHandle) error                { return nil }
func (c *fakeConn) TxRollback(context.Context, idb.TxHandle) error              { return nil }
func (c *fakeConn) Run(context.Context, idb.Command, idb.TxConfig) (idb.StreamHandle, error) {
	return nil, nil
}
func (c *fakeConn) RunTx(context.Context, idb.TxHandle, idb.Command) (idb.StreamHandle, error) {
	return nil, nil
}
func (c *fakeConn) Keys(idb.StreamHandle) ([]string, error) { return nil, nil }
func (c *fakeConn) Next(context.Context, idb.StreamHandle) (*db.Record, *db.Summary, error) {
	return nil, nil, nil
}
func (c *fakeConn) Consume(context.Context, idb.StreamHandle) (*db.Summary, error) { return nil, nil }
func (c *fakeConn) Buffer(context.Context, idb.StreamHandle) error                 { return nil }
func (c *fakeConn) Bookmark() string                                               { return "" }
func (c *fakeConn) ServerName() string                                            { return c.name }
func (c *fakeConn) ServerVersion() string                                         { return "" }
func (c *fakeConn) Version() db.ProtocolVersion                                   { return db.ProtocolVersion{} }
func (c *fakeConn) IsAlive() bool                                                 { return true }
func (c *fakeConn) HasFailed() bool                                               { return false }
func (c *fakeConn) Birthdate() time.Time                                          { return time.Time{} }
func (c *fakeConn) IdleDate() time.Time                                           { return time.Time{} }
func (c *fakeConn) Reset(context.Context)                                         {}
func (c *fakeConn) ForceReset(context.Context)                                    {}
func (c *fakeConn) Close(context.Context)                                         {}
func (c *fakeConn) GetRoutingTable(context.Context, map[string]string, []string, string, string) (*idb.RoutingTable, error) {
	return nil, nil
}

func TestOnFailureInvalidatesRouteOnClusterError(t *testing.T) {
	s := newTestState(time.Minute, 3)
	invalidated := ""
	s.OnDeadConnection = func(server string) error {
		invalidated = server
		return nil
	}
	conn := fakeConnNamed("srv1")
	s.OnFailure(context.Background(), conn, &db.Neo4jError{Code: "Neo.ClientError.Cluster.NotALeader"}, false)
	assert.Equal(t, "srv1", invalidated)
}

func TestOnFailureStopsAfterDeadConnectionBudgetExhausted(t *testing.T) {
	s := newTestState(time.Minute, 1)
	s.OnDeadConnection = func(string) error { return nil }
	conn := fakeConnNamed("srv1")

	s.OnFailure(context.Background(), conn, errors.New("connection reset"), false)
	assert.True(t, s.LastErrWasRetryable)

	s.OnFailure(context.Background(), conn, errors.New("connection reset"), false)
	assert.False(t, s.LastErrWasRetryable)
}

func TestOnFailureNotRetryableOnceCommitAcknowledged(t *testing.T) {
	s := newTestState(time.Minute, 3)
	s.OnFailure(context.Background(), nil, errors.New("connection reset"), true)
	assert.False(t, s.LastErrWasRetryable)
}
