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
	"time"

	"github.com/boltgraph/go-driver/neo4j/log"
)

// Config holds driver-wide settings shared by every session it opens.
type Config struct {
	// MaxTransactionRetryTime caps how long ExecuteRead/ExecuteWrite keep
	// retrying a managed transaction before giving up with a
	// TransactionExecutionLimit.
	MaxTransactionRetryTime time.Duration
	// MaxConnectionPoolSize bounds how many connections the pool keeps open
	// per server, and doubles as the dead-connection retry budget.
	MaxConnectionPoolSize int
	// MaxConnectionLifetime is a maximum connection age. The pool does not
	// read it: pooled connections are not retired by age.
	MaxConnectionLifetime time.Duration
	// ConnectionAcquisitionTimeout bounds how long a session will wait for
	// a connection to become available from the pool. Zero makes a borrow
	// fail at once when the chosen server has no free slot; a negative value
	// waits without a time limit.
	ConnectionAcquisitionTimeout time.Duration
	// SocketConnectTimeout bounds the TCP dial when establishing a new
	// Bolt connection.
	SocketConnectTimeout time.Duration
	// FetchSize is the default PULL batch size new sessions use unless they
	// override it in SessionConfig.
	FetchSize int
	// Log receives driver-internal diagnostic messages; defaults to
	// log.Void, which discards them. log.NewConsole gives a zerolog-backed
	// console logger.
	Log log.Logger
	// UserAgent identifies this driver to the server during HELLO/handshake.
	UserAgent string
	// RoutingContext carries extra routing parameters (e.g. a client
	// region) sent on every ROUTE request, separate from auth.
	RoutingContext map[string]string
}

func defaultConfig() *Config {
	return &Config{
		MaxTransactionRetryTime:      30 * time.Second,
		MaxConnectionPoolSize:        100,
		MaxConnectionLifetime:        time.Hour,
		ConnectionAcquisitionTimeout: 60 * time.Second,
		SocketConnectTimeout:         5 * time.Second,
		FetchSize:                    1000,
		Log:                          log.Void{},
		UserAgent:                    "boltgraph-go-driver",
	}
}
