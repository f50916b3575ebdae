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

// Package pool implements the bounded, per-server connection pool: each
// server address gets its own counting semaphore capping
// concurrently borrowed connections, idle live connections are reused
// ahead of dialing, and any not-yet-consumed stream is drained before a
// connection is handed back out.
package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
	"github.com/boltgraph/go-driver/neo4j/internal/errorutil"
	"github.com/boltgraph/go-driver/neo4j/log"
)

// DefaultLivenessCheckThreshold disables the active liveness probe: idle
// connections are handed out as-is, with staleness surfacing as an
// ordinary connectivity error on first use instead.
const DefaultLivenessCheckThreshold = time.Duration(0)

// Connector dials and performs the Bolt handshake/HELLO for a brand new
// connection to the given server address.
type Connector func(ctx context.Context, address string) (idb.Connection, error)

type serverPool struct {
	sem  *semaphore.Weighted
	mu   sync.Mutex
	idle []idb.Connection
}

func (sp *serverPool) takeIdle(ctx context.Context, livenessCheckThreshold time.Duration) idb.Connection {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	for len(sp.idle) > 0 {
		n := len(sp.idle) - 1
		conn := sp.idle[n]
		sp.idle = sp.idle[:n]
		if !conn.IsAlive() {
			continue
		}
		if livenessCheckThreshold > 0 && time.Since(conn.IdleDate()) >= livenessCheckThreshold {
			conn.Reset(ctx)
			if !conn.IsAlive() {
				conn.Close(ctx)
				continue
			}
		}
		return conn
	}
	return nil
}

func (sp *serverPool) putIdle(conn idb.Connection) {
	sp.mu.Lock()
	sp.idle = append(sp.idle, conn)
	sp.mu.Unlock()
}

func (sp *serverPool) drain(ctx context.Context) {
	sp.mu.Lock()
	idle := sp.idle
	sp.idle = nil
	sp.mu.Unlock()
	for _, c := range idle {
		c.Close(ctx)
	}
}

// Pool is a bounded, per-server-address connection pool.
type Pool struct {
	connect   Connector
	maxPerKey int
	log       log.Logger

	mu      sync.Mutex
	servers map[string]*serverPool
	closed  bool
}

// New creates a pool that dials through connect, allowing up to maxPerKey
// concurrently borrowed connections per distinct server address.
func New(maxPerKey int, connect Connector, logger log.Logger) *Pool {
	return &Pool{
		connect:   connect,
		maxPerKey: maxPerKey,
		log:       logger,
		servers:   make(map[string]*serverPool),
	}
}

func (p *Pool) serverPoolFor(address string) *serverPool {
	p.mu.Lock()
	defer p.mu.Unlock()
	sp, ok := p.servers[address]
	if !ok {
		sp = &serverPool{sem: semaphore.NewWeighted(int64(p.maxPerKey))}
		p.servers[address] = sp
	}
	return sp
}

// Borrow acquires a connection to one of serverNames, trying each in turn.
// wait selects whether to block for a semaphore slot or fail fast when the
// chosen server is already at capacity.
func (p *Pool) Borrow(ctx context.Context, serverNames []string, wait bool, boltLogger log.BoltLogger, livenessCheckThreshold time.Duration) (idb.Connection, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, errors.New(errorutil.PoolClosedError)
	}
	if len(serverNames) == 0 {
		return nil, errors.New("pool: no servers to borrow a connection from")
	}

	var lastErr error
	for _, address := range serverNames {
		conn, err := p.borrowFrom(ctx, address, wait, livenessCheckThreshold)
		if err != nil {
			lastErr = err
			continue
		}
		if boltLogger != nil {
			if setter, ok := conn.(interface {
				SetBoltLogger(log.BoltLogger)
			}); ok {
				setter.SetBoltLogger(boltLogger)
			}
		}
		return conn, nil
	}
	return nil, lastErr
}

func (p *Pool) borrowFrom(ctx context.Context, address string, wait bool, livenessCheckThreshold time.Duration) (idb.Connection, error) {
	sp := p.serverPoolFor(address)

	if wait {
		if err := sp.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	} else if !sp.sem.TryAcquire(1) {
		return nil, errors.New("pool: no available connection slot for " + address)
	}

	if conn := sp.takeIdle(ctx, livenessCheckThreshold); conn != nil {
		return conn, nil
	}

	conn, err := p.connect(ctx, address)
	if err != nil {
		sp.sem.Release(1)
		return nil, err
	}
	return conn, nil
}

// Return hands a connection back, draining any pending stream via Reset
// before making it available to the next Borrow, or closing it outright
// when it is dead or failed beyond recovery.
func (p *Pool) Return(ctx context.Context, conn idb.Connection) error {
	if conn == nil {
		return nil
	}
	sp := p.serverPoolFor(conn.ServerName())
	defer sp.sem.Release(1)

	if conn.HasFailed() || !conn.IsAlive() {
		conn.Close(ctx)
		return nil
	}

	conn.Reset(ctx)
	if !conn.IsAlive() {
		conn.Close(ctx)
		return nil
	}

	sp.putIdle(conn)
	return nil
}

// CleanUp closes every idle connection and marks the pool closed to future
// Borrow calls.
func (p *Pool) CleanUp(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	servers := make([]*serverPool, 0, len(p.servers))
	for _, sp := range p.servers {
		servers = append(servers, sp)
	}
	p.mu.Unlock()

	for _, sp := range servers {
		sp.drain(ctx)
	}
	return nil
}
