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

// Package router maintains one cached routing table per database: it
// refreshes through ROUTE requests issued over short-lived connections,
// round-robins readers/writers on each request, and evicts a database's
// table on a cluster-topology failure so the next request refreshes it.
package router

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
	"github.com/boltgraph/go-driver/neo4j/internal/pool"
	"github.com/boltgraph/go-driver/neo4j/log"
)

// Router is the driver-wide routing-table cache and refresher.
type Router struct {
	initialRouter  string
	routingContext map[string]string
	dial           pool.Connector
	log            log.Logger

	mu    sync.Mutex
	cache *lru.Cache[string, *idb.RoutingTable]
	rr    map[string]uint64
}

// New creates a router that dials through dial (typically a short-lived,
// non-pooled Bolt connector) to reach initialRouter when no cached table
// has any routers of its own left to ask.
func New(initialRouter string, routingContext map[string]string, dial pool.Connector, logger log.Logger) *Router {
	cache, _ := lru.New[string, *idb.RoutingTable](64)
	return &Router{
		initialRouter:  initialRouter,
		routingContext: routingContext,
		dial:           dial,
		log:            logger,
		cache:          cache,
		rr:             make(map[string]uint64),
	}
}

func (r *Router) tableFor(ctx context.Context, database string, bookmarks []string, impersonatedUser string, boltLogger log.BoltLogger) (*idb.RoutingTable, error) {
	r.mu.Lock()
	table, ok := r.cache.Get(database)
	r.mu.Unlock()
	if ok && !table.Stale(time.Now()) {
		return table, nil
	}
	return r.refresh(ctx, database, bookmarks, impersonatedUser, boltLogger)
}

func (r *Router) routerCandidates(database string) []string {
	r.mu.Lock()
	table, ok := r.cache.Get(database)
	r.mu.Unlock()
	if ok && len(table.Routers) > 0 {
		return table.Routers
	}
	return []string{r.initialRouter}
}

func (r *Router) refresh(ctx context.Context, database string, bookmarks []string, impersonatedUser string, boltLogger log.BoltLogger) (*idb.RoutingTable, error) {
	var lastErr error
	for _, address := range r.routerCandidates(database) {
		table, err := r.refreshFrom(ctx, address, database, bookmarks, impersonatedUser, boltLogger)
		if err != nil {
			lastErr = err
			continue
		}
		return table, nil
	}
	return nil, lastErr
}

func (r *Router) refreshFrom(ctx context.Context, address, database string, bookmarks []string, impersonatedUser string, boltLogger log.BoltLogger) (*idb.RoutingTable, error) {
	conn, err := r.dial(ctx, address)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)
	if boltLogger != nil {
		if setter, ok := conn.(interface {
			SetBoltLogger(log.BoltLogger)
		}); ok {
			setter.SetBoltLogger(boltLogger)
		}
	}

	table, err := conn.GetRoutingTable(ctx, r.routingContext, bookmarks, database, impersonatedUser)
	if err != nil {
		return nil, err
	}
	table.FetchedAt = time.Now()
	if table.DatabaseName == "" {
		table.DatabaseName = database
	}

	r.mu.Lock()
	r.cache.Add(table.DatabaseName, table)
	r.mu.Unlock()
	return table, nil
}

// rotate returns servers reordered to start at this key's round-robin
// cursor, advancing the cursor for next time.
func (r *Router) rotate(key string, servers []string) []string {
	if len(servers) == 0 {
		return nil
	}
	r.mu.Lock()
	idx := int(r.rr[key] % uint64(len(servers)))
	r.rr[key]++
	r.mu.Unlock()

	out := make([]string, len(servers))
	n := copy(out, servers[idx:])
	copy(out[n:], servers[:idx])
	return out
}

func (r *Router) Readers(ctx context.Context, bookmarks []string, database string, boltLogger log.BoltLogger) ([]string, error) {
	table, err := r.tableFor(ctx, database, bookmarks, "", boltLogger)
	if err != nil {
		return nil, err
	}
	return r.rotate(database+"|read", table.Readers), nil
}

func (r *Router) Writers(ctx context.Context, bookmarks []string, database string, boltLogger log.BoltLogger) ([]string, error) {
	table, err := r.tableFor(ctx, database, bookmarks, "", boltLogger)
	if err != nil {
		return nil, err
	}
	return r.rotate(database+"|write", table.Writers), nil
}

// GetNameOfDefaultDatabase resolves the home database for a possibly
// impersonated user; it always refreshes since the answer depends on who
// is asking, not just which database name was requested.
func (r *Router) GetNameOfDefaultDatabase(ctx context.Context, bookmarks []string, impersonatedUser string, boltLogger log.BoltLogger) (string, error) {
	table, err := r.refresh(ctx, idb.DefaultDatabase, bookmarks, impersonatedUser, boltLogger)
	if err != nil {
		return "", err
	}
	return table.DatabaseName, nil
}

// InvalidateWriter and InvalidateReader evict a database's cached table
// outright on a cluster-failure signal; the next request for
// that database triggers a full refresh rather than trying to patch just
// the one failed entry.
func (r *Router) InvalidateWriter(_ context.Context, database, _ string) error {
	r.mu.Lock()
	r.cache.Remove(database)
	r.mu.Unlock()
	return nil
}

func (r *Router) InvalidateReader(ctx context.Context, database, server string) error {
	return r.InvalidateWriter(ctx, database, server)
}

func (r *Router) CleanUp(context.Context) error {
	r.mu.Lock()
	r.cache.Purge()
	r.mu.Unlock()
	return nil
}
