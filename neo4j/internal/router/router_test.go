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

package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
	"github.com/boltgraph/go-driver/neo4j/internal/pool"
	"github.com/boltgraph/go-driver/neo4j/log"
)

type fakeRoutingConn struct {
	idb.Connection
	table *idb.RoutingTable
	err   error
}

func (c *fakeRoutingConn) GetRoutingTable(context.Context, map[string]string, []string, string, string) (*idb.RoutingTable, error) {
	return c.table, c.err
}
func (c *fakeRoutingConn) Close(context.Context) {}

func TestReadersAndWritersRoundRobin(t *testing.T) {
	table := &idb.RoutingTable{
		DatabaseName: "neo4j",
		TimeToLive:   300,
		Readers:      []string{"r1:7687", "r2:7687"},
		Writers:      []string{"w1:7687"},
		Routers:      []string{"router1:7687"},
	}
	dial := func(context.Context, string) (idb.Connection, error) {
		return &fakeRoutingConn{table: table}, nil
	}
	r := New("router1:7687", nil, pool.Connector(dial), log.Void{})

	first, err := r.Readers(context.Background(), nil, "neo4j", nil)
	require.NoError(t, err)
	second, err := r.Readers(context.Background(), nil, "neo4j", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.ElementsMatch(t, first, second)

	writers, err := r.Writers(context.Background(), nil, "neo4j", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1:7687"}, writers)
}

func TestInvalidateWriterForcesRefresh(t *testing.T) {
	calls := 0
	dial := func(context.Context, string) (idb.Connection, error) {
		calls++
		return &fakeRoutingConn{table: &idb.RoutingTable{
			DatabaseName: "neo4j",
			TimeToLive:   300,
			Readers:      []string{"r1:7687"},
			Routers:      []string{"router1:7687"},
		}}, nil
	}
	r := New("router1:7687", nil, pool.Connector(dial), log.Void{})

	_, err := r.Readers(context.Background(), nil, "neo4j", nil)
	require.NoError(t, err)
	_, err = r.Readers(context.Background(), nil, "neo4j", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	require.NoError(t, r.InvalidateWriter(context.Background(), "neo4j", "r1:7687"))
	_, err = r.Readers(context.Background(), nil, "neo4j", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRefreshFallsBackToNextRouterCandidate(t *testing.T) {
	dial := func(_ context.Context, address string) (idb.Connection, error) {
		if address == "bad:7687" {
			return nil, assertUnreachable{}
		}
		return &fakeRoutingConn{table: &idb.RoutingTable{
			DatabaseName: "neo4j",
			TimeToLive:   300,
			Writers:      []string{"w1:7687"},
			Routers:      []string{"good:7687"},
		}}, nil
	}
	r := New("bad:7687", nil, pool.Connector(dial), log.Void{})
	r.rr = map[string]uint64{}
	r.cache.Add("neo4j", &idb.RoutingTable{
		DatabaseName: "neo4j",
		Routers:      []string{"bad:7687", "good:7687"},
	})

	writers, err := r.Writers(context.Background(), nil, "neo4j", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1:7687"}, writers)
}

type assertUnreachable struct{}

func (assertUnreachable) Error() string { return "unreachable router" }
