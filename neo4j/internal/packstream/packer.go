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

package packstream

import (
	"fmt"
	"math"
)

// Packer serializes Go values into PackStream bytes, always choosing the
// smallest marker/size class that fits, per the protocol.
type Packer struct {
	buf []byte
}

// Reset clears the packer for reuse, keeping its backing array.
func (p *Packer) Reset() {
	p.buf = p.buf[:0]
}

// Bytes returns the bytes packed so far.
func (p *Packer) Bytes() []byte {
	return p.buf
}

func (p *Packer) PackNil() {
	p.buf = append(p.buf, markerNull)
}

func (p *Packer) PackBool(b bool) {
	if b {
		p.buf = append(p.buf, markerTrue)
	} else {
		p.buf = append(p.buf, markerFalse)
	}
}

func (p *Packer) PackInt(n int64) {
	switch {
	case n >= negativeTinyIntFloor && n <= 127:
		p.buf = append(p.buf, byte(int8(n)))
	case n >= math.MinInt8 && n <= math.MaxInt8:
		p.buf = append(p.buf, markerInt8, byte(int8(n)))
	case n >= math.MinInt16 && n <= math.MaxInt16:
		p.buf = append(p.buf, markerInt16)
		p.putUint16(uint16(int16(n)))
	case n >= math.MinInt32 && n <= math.MaxInt32:
		p.buf = append(p.buf, markerInt32)
		p.putUint32(uint32(int32(n)))
	default:
		p.buf = append(p.buf, markerInt64)
		p.putUint64(uint64(n))
	}
}

func (p *Packer) PackFloat(f float64) {
	p.buf = append(p.buf, markerFloat64)
	p.putUint64(math.Float64bits(f))
}

func (p *Packer) PackString(s string) {
	n := len(s)
	switch {
	case n <= 15:
		p.buf = append(p.buf, byte(markerTinyStringBase|n))
	case n <= math.MaxUint8:
		p.buf = append(p.buf, markerString8, byte(n))
	case n <= math.MaxUint16:
		p.buf = append(p.buf, markerString16)
		p.putUint16(uint16(n))
	default:
		p.buf = append(p.buf, markerString32)
		p.putUint32(uint32(n))
	}
	p.buf = append(p.buf, s...)
}

func (p *Packer) PackBytes(b []byte) {
	n := len(b)
	switch {
	case n <= math.MaxUint8:
		p.buf = append(p.buf, markerBytes8, byte(n))
	case n <= math.MaxUint16:
		p.buf = append(p.buf, markerBytes16)
		p.putUint16(uint16(n))
	default:
		p.buf = append(p.buf, markerBytes32)
		p.putUint32(uint32(n))
	}
	p.buf = append(p.buf, b...)
}

// PackListHeader writes a list marker for n upcoming elements; the caller
// packs each element afterwards. Lists are heterogeneous so there's no
// PackList([]any) convenience beyond that.
func (p *Packer) PackListHeader(n int) {
	switch {
	case n <= 15:
		p.buf = append(p.buf, byte(markerTinyListBase|n))
	case n <= math.MaxUint8:
		p.buf = append(p.buf, markerList8, byte(n))
	case n <= math.MaxUint16:
		p.buf = append(p.buf, markerList16)
		p.putUint16(uint16(n))
	default:
		p.buf = append(p.buf, markerList32)
		p.putUint32(uint32(n))
	}
}

// PackMapHeader writes a map marker for n upcoming key/value pairs.
// Key order is preserved on the wire but is semantically unordered
//.
func (p *Packer) PackMapHeader(n int) {
	switch {
	case n <= 15:
		p.buf = append(p.buf, byte(markerTinyMapBase|n))
	case n <= math.MaxUint8:
		p.buf = append(p.buf, markerMap8, byte(n))
	case n <= math.MaxUint16:
		p.buf = append(p.buf, markerMap16)
		p.putUint16(uint16(n))
	default:
		p.buf = append(p.buf, markerMap32)
		p.putUint32(uint32(n))
	}
}

// PackStructHeader writes a structure marker (signature byte + n fields);
// the caller packs the fields afterwards.
func (p *Packer) PackStructHeader(n int, sig byte) {
	switch {
	case n <= 15:
		p.buf = append(p.buf, byte(markerTinyStructBase|n))
	case n <= math.MaxUint8:
		p.buf = append(p.buf, markerStruct8, byte(n))
	default:
		p.buf = append(p.buf, markerStruct16)
		p.putUint16(uint16(n))
	}
	p.buf = append(p.buf, sig)
}

// PackMap packs a complete string-keyed map of homogeneously-packable
// values using PackAny for each value.
func (p *Packer) PackMap(m map[string]any) error {
	p.PackMapHeader(len(m))
	for k, v := range m {
		p.PackString(k)
		if err := p.PackAny(v); err != nil {
			return err
		}
	}
	return nil
}

// PackList packs a complete heterogeneous list using PackAny per element.
func (p *Packer) PackList(items []any) error {
	p.PackListHeader(len(items))
	for _, it := range items {
		if err := p.PackAny(it); err != nil {
			return err
		}
	}
	return nil
}

// PackAny dispatches on the dynamic Go type of v, covering the scalar/
// list/map sum. Structures (requests like HELLO/RUN) are packed
// explicitly by the message layer, not here.
func (p *Packer) PackAny(v any) error {
	switch x := v.(type) {
	case nil:
		p.PackNil()
	case bool:
		p.PackBool(x)
	case int:
		p.PackInt(int64(x))
	case int64:
		p.PackInt(x)
	case int32:
		p.PackInt(int64(x))
	case float64:
		p.PackFloat(x)
	case string:
		p.PackString(x)
	case []byte:
		p.PackBytes(x)
	case []string:
		p.PackListHeader(len(x))
		for _, s := range x {
			p.PackString(s)
		}
	case []any:
		return p.PackList(x)
	case map[string]any:
		return p.PackMap(x)
	case map[string]string:
		p.PackMapHeader(len(x))
		for k, v := range x {
			p.PackString(k)
			p.PackString(v)
		}
	default:
		return fmt.Errorf("packstream: cannot pack value of type %T", v)
	}
	return nil
}

func (p *Packer) putUint16(v uint16) {
	p.buf = append(p.buf, byte(v>>8), byte(v))
}

func (p *Packer) putUint32(v uint32) {
	p.buf = append(p.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (p *Packer) putUint64(v uint64) {
	p.buf = append(p.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
