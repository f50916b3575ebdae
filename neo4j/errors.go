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
	"fmt"
	"strings"

	"github.com/boltgraph/go-driver/neo4j/db"
)

// UsageError signals a mistake in how the driver's API was called: a bad
// configuration value, a session used after Close, a transaction run
// twice, and similar client-side misuse.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// ConnectivityError wraps a network or protocol-level failure that
// prevented a request from reaching, or a response from leaving, the
// server.
type ConnectivityError struct {
	server string
	err    error
}

func (e *ConnectivityError) Error() string {
	if e.server != "" {
		return fmt.Sprintf("connectivity error (%s): %s", e.server, e.err)
	}
	return fmt.Sprintf("connectivity error: %s", e.err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.err
}

// TransactionExecutionLimit is returned when a managed transaction
// (ExecuteRead/ExecuteWrite) exhausted its retry budget while every
// failure still classified as retriable.
type TransactionExecutionLimit struct {
	Errs   []error
	Causes []error
}

func (e *TransactionExecutionLimit) Error() string {
	var last error
	if len(e.Errs) > 0 {
		last = e.Errs[len(e.Errs)-1]
	}
	return fmt.Sprintf("transaction retry budget exhausted after %d attempt(s), last error: %s", len(e.Errs), last)
}

func newTransactionExecutionLimit(errs, causes []error) *TransactionExecutionLimit {
	return &TransactionExecutionLimit{Errs: errs, Causes: causes}
}

// wrapError normalizes an error coming out of the connection layer into
// one of the driver's own error types, leaving server errors (*db.Neo4jError)
// and already-wrapped driver errors untouched.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *UsageError, *ConnectivityError, *TransactionExecutionLimit, *db.Neo4jError:
		return err
	}
	return &ConnectivityError{err: err}
}

// combineAllErrors joins every non-nil error from a set of independent
// cleanup operations (pool/router CleanUp, transaction Close) into one.
func combineAllErrors(errs ...error) error {
	var nonNil []error
	for _, e := range errs {
		if e != nil {
			nonNil = append(nonNil, e)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	}
	msgs := make([]string, len(nonNil))
	for i, e := range nonNil {
		msgs[i] = e.Error()
	}
	return &UsageError{Message: strings.Join(msgs, "; ")}
}
