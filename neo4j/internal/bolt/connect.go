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

package bolt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
	"github.com/boltgraph/go-driver/neo4j/log"
)

// proposedVersions lists the Bolt major.minor pairs offered during
// handshake, newest first; the server picks the first one it supports.
var proposedVersions = [4][2]byte{
	{5, 4},
	{5, 3},
	{5, 2},
	{5, 1},
}

// ConnectConfig carries everything Connect needs beyond the address: how to
// reach the socket, and what to say once a Bolt version has been agreed.
type ConnectConfig struct {
	TlsConfig          *tls.Config
	DialTimeout        time.Duration
	Auth               map[string]any
	UserAgent          string
	RoutingContext     map[string]string
	NotificationConfig idb.NotificationConfig
	Log                log.Logger
	BoltLogger         log.BoltLogger
}

// Connect dials address, performs the handshake and version negotiation,
// and authenticates, returning a ready-to-use Bolt 5.x connection.
func Connect(ctx context.Context, address string, cfg ConnectConfig) (idb.Connection, error) {
	conn, err := dial(ctx, address, cfg)
	if err != nil {
		return nil, err
	}

	minor, err := handshake(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	b := newProtoV5(address, conn, cfg.Log, cfg.BoltLogger)
	if err := b.Connect(ctx, minor, cfg.Auth, cfg.UserAgent, cfg.RoutingContext, cfg.NotificationConfig); err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

func dial(ctx context.Context, address string, cfg ConnectConfig) (net.Conn, error) {
	dialer := net.Dialer{Timeout: cfg.DialTimeout}
	if cfg.TlsConfig != nil {
		return tls.DialWithDialer(&dialer, "tcp", address, cfg.TlsConfig)
	}
	return dialer.DialContext(ctx, "tcp", address)
}

// handshake sends the magic preamble followed by four proposed versions and
// returns the negotiated minor version (always major 5); the server
// responds with a single 4-byte big-endian (0, 0, minor, major) tuple, or
// all zeroes when none of the proposals are acceptable.
func handshake(conn net.Conn) (int, error) {
	req := make([]byte, 0, 4+4*4)
	req = append(req, handshakeMagic[:]...)
	for _, v := range proposedVersions {
		req = append(req, 0x00, 0x00, v[1], v[0])
	}
	if _, err := conn.Write(req); err != nil {
		return 0, fmt.Errorf("bolt handshake: %w", err)
	}

	resp := make([]byte, 4)
	if _, err := readFull(conn, resp); err != nil {
		return 0, fmt.Errorf("bolt handshake: %w", err)
	}
	major, minor := resp[3], resp[2]
	if major == 0 && minor == 0 {
		return 0, errors.New("bolt handshake: server does not support any proposed protocol version")
	}
	if major != 5 {
		return 0, fmt.Errorf("bolt handshake: unsupported protocol version %d.%d", major, minor)
	}
	return int(minor), nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := conn.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
