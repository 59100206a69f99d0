// Copyright 2026 The Arrowhash Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package arrowhash

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

var alloc = memory.NewGoAllocator()

func arrayDigest(t *testing.T, arr arrow.Array) []byte {
	t.Helper()
	sum, err := DigestArray(arr, sha3.New256)
	require.NoError(t, err)
	return sum
}

func recordDigest(t *testing.T, rec arrow.Record) []byte {
	t.Helper()
	sum, err := Digest(rec, sha3.New256)
	require.NoError(t, err)
	return sum
}

func buildInt32(vals []int32, valid []bool) arrow.Array {
	b := array.NewInt32Builder(alloc)
	defer b.Release()
	b.AppendValues(vals, valid)
	return b.NewArray()
}

func buildInt64(vals []int64, valid []bool) arrow.Array {
	b := array.NewInt64Builder(alloc)
	defer b.Release()
	b.AppendValues(vals, valid)
	return b.NewArray()
}

func buildUint32(vals []uint32, valid []bool) arrow.Array {
	b := array.NewUint32Builder(alloc)
	defer b.Release()
	b.AppendValues(vals, valid)
	return b.NewArray()
}

func buildBool(vals []bool, valid []bool) arrow.Array {
	b := array.NewBooleanBuilder(alloc)
	defer b.Release()
	b.AppendValues(vals, valid)
	return b.NewArray()
}

func buildString(vals []string, valid []bool) arrow.Array {
	b := array.NewStringBuilder(alloc)
	defer b.Release()
	b.AppendValues(vals, valid)
	return b.NewArray()
}

func buildLargeString(vals []string, valid []bool) arrow.Array {
	b := array.NewLargeStringBuilder(alloc)
	defer b.Release()
	b.AppendValues(vals, valid)
	return b.NewArray()
}

func buildBinary(vals [][]byte, valid []bool) arrow.Array {
	b := array.NewBinaryBuilder(alloc, arrow.BinaryTypes.Binary)
	defer b.Release()
	b.AppendValues(vals, valid)
	return b.NewArray()
}

func buildListInt32(entries [][]int32, valid []bool) arrow.Array {
	b := array.NewListBuilder(alloc, arrow.PrimitiveTypes.Int32)
	defer b.Release()
	vb := b.ValueBuilder().(*array.Int32Builder)
	for i, e := range entries {
		if valid != nil && !valid[i] {
			b.AppendNull()
			continue
		}
		b.Append(true)
		vb.AppendValues(e, nil)
	}
	return b.NewArray()
}

// singleColumnRecord wraps one array as a record with the given field name.
func singleColumnRecord(name string, arr arrow.Array) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: name, Type: arr.DataType(), Nullable: true},
	}, nil)
	return array.NewRecord(schema, []arrow.Array{arr}, int64(arr.Len()))
}
