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

package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boltgraph/go-driver/neo4j/db"
	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
	"github.com/boltgraph/go-driver/neo4j/log"
)

type fakeConn struct {
	server   string
	alive    bool
	failed   bool
	resets   int
	closed   bool
	idleDate time.Time
}

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
func (c *fakeConn) ServerName() string                                            { return c.server }
func (c *fakeConn) ServerVersion() string                                          { return "fake/1.0" }
func (c *fakeConn) Version() db.ProtocolVersion                                    { return db.ProtocolVersion{Major: 5} }
func (c *fakeConn) IsAlive() bool                                                  { return c.alive }
func (c *fakeConn) HasFailed() bool                                                { return c.failed }
func (c *fakeConn) Birthdate() time.Time                                          { return time.Time{} }
func (c *fakeConn) IdleDate() time.Time                                          { return c.idleDate }
func (c *fakeConn) Reset(context.Context)                                         { c.resets++ }
func (c *fakeConn) ForceReset(context.Context)                                    { c.resets++ }
func (c *fakeConn) Close(context.Context)                                         { c.closed = true }
func (c *fakeConn) GetRoutingTable(context.Context, map[string]string, []string, string, string) (*idb.RoutingTable, error) {
	return nil, nil
}

func newFakeConnector() (Connector, *int) {
	dials := 0
	return func(_ context.Context, address string) (idb.Connection, error) {
		dials++
		return &fakeConn{server: address, alive: true}, nil
	}, &dials
}

func TestPoolBorrowReturnReusesIdleConnection(t *testing.T) {
	connect, dials := newFakeConnector()
	p := New(2, connect, log.Void{})

	conn, err := p.Borrow(context.Background(), []string{"a:7687"}, true, nil, DefaultLivenessCheckThreshold)
	require.NoError(t, err)
	require.NoError(t, p.Return(context.Background(), conn))

	conn2, err := p.Borrow(context.Background(), []string{"a:7687"}, true, nil, DefaultLivenessCheckThreshold)
	require.NoError(t, err)
	assert.Same(t, conn, conn2)
	assert.Equal(t, 1, *dials)
}

func TestPoolReturnClosesFailedConnection(t *testing.T) {
	connect, _ := newFakeConnector()
	p := New(2, connect, log.Void{})

	conn, err := p.Borrow(context.Background(), []string{"a:7687"}, true, nil, DefaultLivenessCheckThreshold)
	require.NoError(t, err)
	conn.(*fakeConn).failed = true
	require.NoError(t, p.Return(context.Background(), conn))
	assert.True(t, conn.(*fakeConn).closed)
}

func TestPoolBorrowFailsFastWhenAtCapacityAndNotWaiting(t *testing.T) {
	connect, _ := newFakeConnector()
	p := New(1, connect, log.Void{})

	_, err := p.Borrow(context.Background(), []string{"a:7687"}, true, nil, DefaultLivenessCheckThreshold)
	require.NoError(t, err)

	_, err = p.Borrow(context.Background(), []string{"a:7687"}, false, nil, DefaultLivenessCheckThreshold)
	assert.Error(t, err)
}

func TestPoolCleanUpClosesIdleAndRejectsFurtherBorrows(t *testing.T) {
	connect, _ := newFakeConnector()
	p := New(2, connect, log.Void{})

	conn, err := p.Borrow(context.Background(), []string{"a:7687"}, true, nil, DefaultLivenessCheckThreshold)
	require.NoError(t, err)
	require.NoError(t, p.Return(context.Background(), conn))

	require.NoError(t, p.CleanUp(context.Background()))
	assert.True(t, conn.(*fakeConn).closed)

	_, err = p.Borrow(context.Background(), []string{"a:7687"}, true, nil, DefaultLivenessCheckThreshold)
	assert.Error(t, err)
}

func TestPoolTakeIdleProbesLivenessPastThreshold(t *testing.T) {
	connect, dials := newFakeConnector()
	p := New(2, connect, log.Void{})

	conn, err := p.Borrow(context.Background(), []string{"a:7687"}, true, nil, DefaultLivenessCheckThreshold)
	require.NoError(t, err)
	fc := conn.(*fakeConn)
	fc.idleDate = time.Now().Add(-time.Hour)
	require.NoError(t, p.Return(context.Background(), conn))

	conn2, err := p.Borrow(context.Background(), []string{"a:7687"}, true, nil, time.Minute)
	require.NoError(t, err)
	assert.Same(t, conn, conn2)
	assert.Equal(t, 1, fc.resets)
	assert.Equal(t, 1, *dials)
}
