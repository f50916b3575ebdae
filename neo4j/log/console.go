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

package log

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Console is a Logger backed by zerolog, giving structured and leveled
// output. It is opt-in: the driver's default Logger is Void.
type Console struct {
	logger zerolog.Logger
}

// NewConsole builds a Console logger writing human-readable lines to w at
// the given zerolog level (e.g. zerolog.InfoLevel).
func NewConsole(w io.Writer, level zerolog.Level) *Console {
	if w == nil {
		w = os.Stderr
	}
	return &Console{
		logger: zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
			Level(level).
			With().Timestamp().Logger(),
	}
}

func (c *Console) Error(name, id string, err error) {
	c.logger.Error().Str("component", name).Str("id", id).Msg(err.Error())
}

func (c *Console) Warnf(name, id, msg string, args ...any) {
	c.logger.Warn().Str("component", name).Str("id", id).Msg(fmt.Sprintf(msg, args...))
}

func (c *Console) Infof(name, id, msg string, args ...any) {
	c.logger.Info().Str("component", name).Str("id", id).Msg(fmt.Sprintf(msg, args...))
}

func (c *Console) Debugf(name, id, msg string, args ...any) {
	c.logger.Debug().Str("component", name).Str("id", id).Msg(fmt.Sprintf(msg, args...))
}

// ConsoleBoltLogger writes the wire traces it is given through zerolog at
// debug level. It can be set as SessionConfig.BoltLogger; the Bolt
// connection stores that logger but emits no messages to it.
type ConsoleBoltLogger struct {
	logger zerolog.Logger
}

func NewConsoleBoltLogger(w io.Writer) *ConsoleBoltLogger {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleBoltLogger{logger: zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"})}
}

func (c *ConsoleBoltLogger) LogClientMessage(context, msg string, args ...any) {
	c.logger.Debug().Str("dir", "C->S").Str("ctx", context).Msg(fmt.Sprintf(msg, args...))
}

func (c *ConsoleBoltLogger) LogServerMessage(context, msg string, args ...any) {
	c.logger.Debug().Str("dir", "S->C").Str("ctx", context).Msg(fmt.Sprintf(msg, args...))
}
