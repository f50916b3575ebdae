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

// Package retry implements the managed-transaction retry loop:
// keep re-running a transaction function against fresh connections while
// the overall elapsed time budget allows and the failure classifies as
// retriable, backing off with jitter between attempts.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/boltgraph/go-driver/neo4j/db"
	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
	"github.com/boltgraph/go-driver/neo4j/internal/errorutil"
	"github.com/boltgraph/go-driver/neo4j/log"
)

// Throttle returns the delay to wait before the next attempt.
type Throttle func() time.Duration

// Throttler builds a Throttle with exponential backoff and jitter, seeded
// with the given base interval.
func Throttler(base time.Duration) Throttle {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.MaxInterval = base * 8
	b.MaxElapsedTime = 0 // unbounded: State enforces the wall-clock budget
	return b.NextBackOff
}

// Router is the subset of the driver's routing collaborator the retry loop
// needs in order to invalidate stale routing entries on cluster failures.
type Router interface {
	InvalidateWriter(ctx context.Context, db, server string) error
	InvalidateReader(ctx context.Context, db, server string) error
}

// State drives one managed-transaction retry sequence: call Continue() in a
// loop, run the transaction function inside, and report its outcome through
// OnFailure before the next Continue() call.
type State struct {
	MaxTransactionRetryTime time.Duration
	Log                     log.Logger
	LogName                 string
	LogId                   string
	Now                     func() time.Time
	Sleep                   func(time.Duration)
	Throttle                Throttle
	MaxDeadConnections      int
	Router                  Router
	DatabaseName            string
	OnDeadConnection        func(server string) error

	Errs                []error
	Causes              []error
	LastErr             error
	LastErrWasRetryable bool

	start           time.Time
	started         bool
	stopped         bool
	deadConnections int
}

// Continue reports whether another attempt should be made: true on the
// very first call, then true again so long as the last reported failure was
// retriable and the MaxTransactionRetryTime budget has not elapsed yet,
// sleeping for a throttled/backed-off interval in between.
func (s *State) Continue() bool {
	if !s.started {
		s.started = true
		s.start = s.Now()
		return true
	}
	if s.stopped {
		return false
	}
	if s.Now().Sub(s.start) >= s.MaxTransactionRetryTime {
		return false
	}
	if s.Throttle != nil {
		d := s.Throttle()
		if s.Sleep != nil {
			s.Sleep(d)
		}
	}
	return true
}

// OnFailure records the outcome of a failed attempt and decides whether it
// is retriable: server Client/Security errors and exhausted
// dead-connection budgets stop the loop outright; cluster (routing)
// errors and bare connectivity failures before a commit was acknowledged
// are retried.
func (s *State) OnFailure(ctx context.Context, conn idb.Connection, err error, wasCommitted bool) {
	s.LastErr = err
	s.Errs = append(s.Errs, err)

	var neo4jErr *db.Neo4jError
	retryable := false
	if errors.As(err, &neo4jErr) {
		retryable = errorutil.IsRetriable(neo4jErr)
		if errorutil.IsCluster(neo4jErr) {
			s.invalidateRoute(ctx, conn)
		}
	} else {
		retryable = !wasCommitted
		s.deadConnections++
		s.invalidateRoute(ctx, conn)
		if s.MaxDeadConnections > 0 && s.deadConnections > s.MaxDeadConnections {
			retryable = false
		}
	}

	s.LastErrWasRetryable = retryable
	if !retryable {
		s.stopped = true
	}
	if s.Log != nil {
		s.Log.Debugf(s.LogName, s.LogId, "Transaction failed (retryable=%t): %s", retryable, err)
	}
}

func (s *State) invalidateRoute(ctx context.Context, conn idb.Connection) {
	if conn == nil || s.OnDeadConnection == nil {
		return
	}
	if cerr := s.OnDeadConnection(conn.ServerName()); cerr != nil {
		s.Causes = append(s.Causes, cerr)
	}
}
