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
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"

	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
	"github.com/boltgraph/go-driver/neo4j/internal/bolt"
	"github.com/boltgraph/go-driver/neo4j/internal/pool"
	"github.com/boltgraph/go-driver/neo4j/internal/router"
	"github.com/boltgraph/go-driver/neo4j/log"
)

// DriverWithContext is the entry point of the library: it owns the
// connection pool and (for a routing scheme) the routing table cache
// shared by every session it opens.
type DriverWithContext interface {
	// NewSession opens a new logical session against this driver.
	NewSession(ctx context.Context, config SessionConfig) SessionWithContext
	// VerifyConnectivity reaches out to the server to confirm the driver
	// can establish a working connection with its current configuration.
	VerifyConnectivity(ctx context.Context) error
	// Target returns the URI this driver was created with.
	Target() url.URL
	// Close releases the pool and, for routing drivers, the routing table
	// cache.
	Close(ctx context.Context) error
}

type driverWithContext struct {
	target  url.URL
	config  *Config
	pool    sessionPool
	router  sessionRouter
	auth    map[string]any
	logId   string
}

// NewDriverWithContext parses target (bolt://, bolt+s://, bolt+ssc://,
// neo4j://, neo4j+s:// or neo4j+ssc://) and returns a driver configured to
// reach it, without yet opening any connection.
func NewDriverWithContext(target string, auth AuthToken, configurers ...func(*Config)) (DriverWithContext, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, &UsageError{Message: fmt.Sprintf("invalid URI %q: %s", target, err)}
	}

	scheme, err := parseScheme(u.Scheme)
	if err != nil {
		return nil, err
	}

	config := defaultConfig()
	for _, c := range configurers {
		c(config)
	}

	logId := log.NewId()
	connector := newConnector(scheme, config, auth.Tokens)

	var r sessionRouter
	if scheme.routed {
		r = router.New(u.Host, config.RoutingContext, connector, config.Log)
	} else {
		r = &directRouter{address: u.Host}
	}

	p := pool.New(config.MaxConnectionPoolSize, connector, config.Log)

	return &driverWithContext{
		target: *u,
		config: config,
		pool:   p,
		router: r,
		auth:   auth.Tokens,
		logId:  logId,
	}, nil
}

type scheme struct {
	routed bool
	secure bool
	trustAny bool
}

func parseScheme(raw string) (scheme, error) {
	switch strings.ToLower(raw) {
	case "bolt":
		return scheme{}, nil
	case "bolt+s":
		return scheme{secure: true}, nil
	case "bolt+ssc":
		return scheme{secure: true, trustAny: true}, nil
	case "neo4j":
		return scheme{routed: true}, nil
	case "neo4j+s":
		return scheme{routed: true, secure: true}, nil
	case "neo4j+ssc":
		return scheme{routed: true, secure: true, trustAny: true}, nil
	}
	return scheme{}, &UsageError{Message: fmt.Sprintf("unsupported URI scheme %q", raw)}
}

func newConnector(scheme scheme, config *Config, auth map[string]any) pool.Connector {
	var tlsConfig *tls.Config
	if scheme.secure {
		tlsConfig = &tls.Config{InsecureSkipVerify: scheme.trustAny}
	}
	return func(ctx context.Context, address string) (idb.Connection, error) {
		return bolt.Connect(ctx, address, bolt.ConnectConfig{
			TlsConfig:      tlsConfig,
			DialTimeout:    config.SocketConnectTimeout,
			Auth:           auth,
			UserAgent:      config.UserAgent,
			RoutingContext: config.RoutingContext,
			Log:            config.Log,
		})
	}
}

func (d *driverWithContext) NewSession(ctx context.Context, config SessionConfig) SessionWithContext {
	return newBoltSession(d.config, config, d.router, d.pool, d.config.Log)
}

func (d *driverWithContext) VerifyConnectivity(ctx context.Context) error {
	servers, err := d.router.Readers(ctx, nil, idb.DefaultDatabase, nil)
	if err != nil {
		return wrapError(err)
	}
	conn, err := d.pool.Borrow(ctx, servers, true, nil, pool.DefaultLivenessCheckThreshold)
	if err != nil {
		return wrapError(err)
	}
	return d.pool.Return(ctx, conn)
}

func (d *driverWithContext) Target() url.URL {
	return d.target
}

func (d *driverWithContext) Close(ctx context.Context) error {
	return combineAllErrors(d.pool.CleanUp(ctx), d.router.CleanUp(ctx))
}
