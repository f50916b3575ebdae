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

// Package log defines the logging seam used throughout the driver. Every
// component logs through the Logger interface, tagged with its own name
// (Bolt5, Pool, Session, ...) and a per-instance log id, never directly
// against a concrete logging library, so applications can plug in their
// own structured logger.
package log

import (
	"fmt"

	"github.com/google/uuid"
)

// Component names used as the first argument to every Logger call.
const (
	Bolt5   = "bolt5"
	Bolt4   = "bolt4"
	Pool    = "pool"
	Router  = "router"
	Session = "session"
	Driver  = "driver"
)

// Logger is the driver-wide structured logging seam.
type Logger interface {
	Error(name string, id string, err error)
	Warnf(name string, id string, msg string, args ...any)
	Infof(name string, id string, msg string, args ...any)
	Debugf(name string, id string, msg string, args ...any)
}

// BoltLogger is the seam for raw wire-level traces (one line per message
// sent or received), set via SessionConfig.BoltLogger. The Bolt connection
// stores it but does not call it.
type BoltLogger interface {
	LogClientMessage(context string, msg string, args ...any)
	LogServerMessage(context string, msg string, args ...any)
}

// NewId returns a short identifier used to correlate log lines belonging to
// the same connection, session or transaction.
func NewId() string {
	id := uuid.New()
	return id.String()[:8]
}

// Void is a Logger that discards everything; it is the default when no
// logger is configured.
type Void struct{}

func (Void) Error(string, string, error)          {}
func (Void) Warnf(string, string, string, ...any) {}
func (Void) Infof(string, string, string, ...any) {}
func (Void) Debugf(string, string, string, ...any) {}

// format renders "name id: msg", keeping log lines greppable by component
// and instance.
func format(name, id, msg string) string {
	if id == "" {
		return fmt.Sprintf("%s: %s", name, msg)
	}
	return fmt.Sprintf("%s %s: %s", name, id, msg)
}
