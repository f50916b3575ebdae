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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boltgraph/go-driver/neo4j/db"
	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
)

// fakeStreamConn serves a fixed, in-memory sequence of records followed by a
// summary, enough to drive resultWithContext without a real Bolt connection.
type fakeStreamConn struct {
	keys      []string
	records   []*db.Record
	pos       int
	sum       *db.Summary
	consumed  bool
	nextErr   error
}

func (c *fakeStreamConn) TxBegin(context.Context, idb.TxConfig) (idb.TxHandle, error) { return 0, nil }
func (c *fakeStreamConn) TxCommit(context.Context, idb.TxHandle) error                { return nil }
func (c *fakeStreamConn) TxRollback(context.Context, idb.TxHandle) error              { return nil }
func (c *fakeStreamConn) Run(context.Context, idb.Command, idb.TxConfig) (idb.StreamHandle, error) {
	return "stream", nil
}
func (c *fakeStreamConn) RunTx(context.Context, idb.TxHandle, idb.Command) (idb.StreamHandle, error) {
	return "stream", nil
}
func (c *fakeStreamConn) Keys(idb.StreamHandle) ([]string, error) { return c.keys, nil }
func (c *fakeStreamConn) Next(context.Context, idb.StreamHandle) (*db.Record, *db.Summary, error) {
	if c.nextErr != nil {
		return nil, nil, c.nextErr
	}
	if c.pos < len(c.records) {
		rec := c.records[c.pos]
		c.pos++
		return rec, nil, nil
	}
	return nil, c.sum, nil
}
func (c *fakeStreamConn) Consume(context.Context, idb.StreamHandle) (*db.Summary, error) {
	c.consumed = true
	return c.sum, nil
}
func (c *fakeStreamConn) Buffer(context.Context, idb.StreamHandle) error { return nil }
func (c *fakeStreamConn) Bookmark() string                              { return "" }
func (c *fakeStreamConn) ServerName() string                            { return "fake" }
func (c *fakeStreamConn) ServerVersion() string                         { return "fake/1.0" }
func (c *fakeStreamConn) Version() db.ProtocolVersion                   { return db.ProtocolVersion{Major: 5} }
func (c *fakeStreamConn) IsAlive() bool                                 { return true }
func (c *fakeStreamConn) HasFailed() bool                               { return false }
func (c *fakeStreamConn) Birthdate() time.Time                          { return time.Time{} }
func (c *fakeStreamConn) IdleDate() time.Time                           { return time.Time{} }
func (c *fakeStreamConn) Reset(context.Context)                        {}
func (c *fakeStreamConn) ForceReset(context.Context)                   {}
func (c *fakeStreamConn) Close(context.Context)                        {}
func (c *fakeStreamConn) GetRoutingTable(context.Context, map[string]string, []string, string, string) (*idb.RoutingTable, error) {
	return nil, nil
}

func newFakeResult(n int) *resultWithContext {
	conn := &fakeStreamConn{
		keys: []string{"n"},
		sum:  &db.Summary{StmtType: "r"},
	}
	for i := 0; i < n; i++ {
		conn.records = append(conn.records, &db.Record{Keys: conn.keys, Values: []any{int64(i)}})
	}
	return newResultWithContext(conn, "stream", "RETURN 1", nil)
}

func TestResultIteratesAllRecords(t *testing.T) {
	r := newFakeResult(3)
	var got []int64
	for r.Next(context.Background()) {
		v, _ := r.Record().Get("n")
		got = append(got, v.(int64))
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []int64{0, 1, 2}, got)
	assert.False(t, r.IsOpen())
}

func TestResultSingleRejectsMultipleRecords(t *testing.T) {
	r := newFakeResult(2)
	_, err := r.Single(context.Background())
	assert.Error(t, err)
}

func TestResultSingleRejectsEmpty(t *testing.T) {
	r := newFakeResult(0)
	_, err := r.Single(context.Background())
	assert.Error(t, err)
}

func TestResultSingleReturnsSoleRecord(t *testing.T) {
	r := newFakeResult(1)
	rec, err := r.Single(context.Background())
	require.NoError(t, err)
	v, _ := rec.Get("n")
	assert.Equal(t, int64(0), v)
}

func TestResultSeekRejectsNonForwardPosition(t *testing.T) {
	r := newFakeResult(3)
	require.True(t, r.Next(context.Background()))
	err := r.Seek(context.Background(), 0)
	assert.Error(t, err)
}

func TestResultSeekAdvancesToPosition(t *testing.T) {
	r := newFakeResult(5)
	require.NoError(t, r.Seek(context.Background(), 2))
	v, _ := r.Record().Get("n")
	assert.Equal(t, int64(2), v)
}

func TestResultConsumeReturnsSummaryAndClosesCursor(t *testing.T) {
	r := newFakeResult(3)
	sum, err := r.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r", sum.StmtType)
	assert.False(t, r.IsOpen())
}

func TestResultCollectDrainsRemainder(t *testing.T) {
	r := newFakeResult(3)
	require.True(t, r.Next(context.Background()))
	rest, err := r.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}
