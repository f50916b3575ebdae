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
	"errors"

	idb "github.com/boltgraph/go-driver/neo4j/internal/db"
)

// notificationFilteringMinMinor is the first Bolt 5.x minor version whose
// HELLO/BEGIN/RUN metadata accepts notification filtering keys.
const notificationFilteringMinMinor = 2

var errNotificationFilteringUnsupported = errors.New(
	"bolt: notification filtering requires at least Bolt protocol 5.2")

// checkNotificationFiltering rejects a non-default NotificationConfig
// outright rather than silently sending metadata the server's negotiated
// protocol version doesn't understand.
func checkNotificationFiltering(cfg idb.NotificationConfig, b *protoV5) error {
	if cfg.MinSeverity == "" && len(cfg.DisabledCategories) == 0 {
		return nil
	}
	if b.minor < notificationFilteringMinMinor {
		return errNotificationFilteringUnsupported
	}
	return nil
}
