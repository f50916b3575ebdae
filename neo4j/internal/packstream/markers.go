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

// Package packstream implements the structure-packing layer of the wire
// codec: a self-describing binary encoding for null, boolean,
// integer, float64, UTF-8 string, list, string-keyed dictionary and
// structure values. No general-purpose binary/JSON serialization library
// in the example corpus implements this marker-byte size-class scheme, so
// it is hand-rolled (see DESIGN.md).
package packstream

const (
	markerTinyStringBase = 0x80
	markerTinyListBase   = 0x90
	markerTinyMapBase    = 0xA0
	markerTinyStructBase = 0xB0

	markerNull    = 0xC0
	markerFloat64 = 0xC1
	markerFalse   = 0xC2
	markerTrue    = 0xC3

	markerInt8  = 0xC8
	markerInt16 = 0xC9
	markerInt32 = 0xCA
	markerInt64 = 0xCB

	markerBytes8  = 0xCC
	markerBytes16 = 0xCD
	markerBytes32 = 0xCE

	markerString8  = 0xD0
	markerString16 = 0xD1
	markerString32 = 0xD2

	markerList8  = 0xD4
	markerList16 = 0xD5
	markerList32 = 0xD6

	markerMap8  = 0xD8
	markerMap16 = 0xD9
	markerMap32 = 0xDA

	markerStruct8  = 0xDC
	markerStruct16 = 0xDD
)

// negativeTinyIntFloor is the smallest value representable as a single
// marker byte tiny-int (-16..127 per PackStream's marker layout).
const negativeTinyIntFloor = -16
