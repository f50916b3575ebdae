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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packUnpack(t *testing.T, v any) any {
	t.Helper()
	p := Packer{}
	require.NoError(t, p.PackAny(v))
	u := Unpacker{}
	u.Reset(p.Bytes())
	out, err := u.UnpackAny()
	require.NoError(t, err)
	return out
}

func TestPackUnpackScalars(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"true", true, true},
		{"false", false, false},
		{"tiny positive int", int64(42), int64(42)},
		{"tiny negative int", int64(-16), int64(-16)},
		{"int8", int64(-100), int64(-100)},
		{"int16", int64(30000), int64(30000)},
		{"int32", int64(3_000_000_000 / 2), int64(1_500_000_000)},
		{"int64", int64(1) << 40, int64(1) << 40},
		{"float", 3.14159, 3.14159},
		{"short string", "hello", "hello"},
		{"empty string", "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, packUnpack(t, c.in))
		})
	}
}

func TestPackUnpackLongString(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = byte('a' + i%26)
	}
	assert.Equal(t, string(long), packUnpack(t, string(long)))
}

func TestPackUnpackBytes(t *testing.T) {
	in := []byte{1, 2, 3, 4, 5}
	out := packUnpack(t, in)
	assert.Equal(t, in, []byte(out.([]byte)))
}

func TestPackUnpackList(t *testing.T) {
	p := Packer{}
	require.NoError(t, p.PackList([]any{int64(1), "two", true, nil}))
	u := Unpacker{}
	u.Reset(p.Bytes())
	out, err := u.UnpackAny()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "two", true, nil}, out)
}

func TestPackUnpackMap(t *testing.T) {
	p := Packer{}
	require.NoError(t, p.PackMap(map[string]any{"a": int64(1), "b": "two"}))
	u := Unpacker{}
	u.Reset(p.Bytes())
	out, err := u.UnpackAny()
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, int64(1), m["a"])
	assert.Equal(t, "two", m["b"])
}

func TestPackUnpackStruct(t *testing.T) {
	p := Packer{}
	p.PackStructHeader(2, 0x70)
	p.PackString("ok")
	require.NoError(t, p.PackMap(map[string]any{"fields": []any{"a"}}))
	u := Unpacker{}
	u.Reset(p.Bytes())
	out, err := u.UnpackAny()
	require.NoError(t, err)
	s := out.(*Struct)
	assert.Equal(t, byte(0x70), s.Sig)
	assert.Equal(t, "ok", s.Fields[0])
}

func TestPackAnyRejectsUnsupportedType(t *testing.T) {
	p := Packer{}
	err := p.PackAny(struct{}{})
	assert.Error(t, err)
}
