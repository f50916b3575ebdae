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

// AuthToken carries the credentials sent in the Bolt HELLO/LOGON message.
// Its Tokens map is the message's "auth" field verbatim; construct one with
// NoAuth, BasicAuth, BearerAuth, KerberosAuth or CustomAuth rather than
// building the map by hand.
type AuthToken struct {
	Tokens map[string]any
}

// NoAuth is used against servers with authentication disabled.
func NoAuth() AuthToken {
	return AuthToken{Tokens: map[string]any{"scheme": "none"}}
}

// BasicAuth authenticates with a username/password pair, optionally scoped
// to a non-default realm.
func BasicAuth(username, password, realm string) AuthToken {
	tokens := map[string]any{
		"scheme":      "basic",
		"principal":   username,
		"credentials": password,
	}
	if realm != "" {
		tokens["realm"] = realm
	}
	return AuthToken{Tokens: tokens}
}

// BearerAuth authenticates with a single-sign-on access token.
func BearerAuth(token string) AuthToken {
	return AuthToken{Tokens: map[string]any{
		"scheme":      "bearer",
		"credentials": token,
	}}
}

// KerberosAuth authenticates with a base64-encoded Kerberos ticket.
func KerberosAuth(ticket string) AuthToken {
	return AuthToken{Tokens: map[string]any{
		"scheme":      "kerberos",
		"principal":   "",
		"credentials": ticket,
	}}
}

// CustomAuth builds an arbitrary auth token for schemes the driver has no
// dedicated constructor for.
func CustomAuth(scheme, username, password, realm string, parameters map[string]any) AuthToken {
	tokens := map[string]any{"scheme": scheme}
	if username != "" {
		tokens["principal"] = username
	}
	if password != "" {
		tokens["credentials"] = password
	}
	if realm != "" {
		tokens["realm"] = realm
	}
	if parameters != nil {
		tokens["parameters"] = parameters
	}
	return AuthToken{Tokens: tokens}
}
