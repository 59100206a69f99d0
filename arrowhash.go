// Copyright 2026 The Arrowhash Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package arrowhash computes deterministic, content-addressable digests of
// Apache Arrow record batches and arrays.
//
// Two datasets produce the same digest if and only if their schema and all of
// their values, including null positions, are identical. The digest is
// insensitive to incidental physical representation: buffer padding, offset
// slicing, 32-bit vs 64-bit string offsets, and a nullable schema flag when
// no nulls are actually present.
//
// The engine is generic over the hash algorithm: any incremental hash.Hash
// works, and the output is exactly as wide as the algorithm's Size. For
// example:
//
//	sum, err := arrowhash.Digest(rec, sha256.New)
//
// To stream multiple record batches sharing one schema into a single
// cumulative digest, use RecordDigester directly: one NewRecordDigester, one
// Update per batch in order, one Finalize.
package arrowhash

import (
	"hash"

	"github.com/apache/arrow-go/v18/arrow"
)

// nullMarker is the single reserved byte hashed in place of a null value.
// Every value encoding emits at least one byte and never starts with an
// unframed zero, so a null is always distinguishable from any present value,
// including a zero-valued one.
var nullMarker = [1]byte{0}

// Digest computes the digest of a single record batch using a fresh hasher
// from newHash. It is shorthand for NewRecordDigester, Update, Finalize.
func Digest(rec arrow.Record, newHash func() hash.Hash) ([]byte, error) {
	d, err := NewRecordDigester(rec.Schema(), newHash)
	if err != nil {
		return nil, err
	}
	if err := d.Update(rec); err != nil {
		return nil, err
	}
	return d.Finalize(), nil
}

// DigestArray computes the digest of a single array. Struct arrays are not
// accepted here; digest them through a record so that field names and nesting
// participate in the result.
func DigestArray(arr arrow.Array, newHash func() hash.Hash) ([]byte, error) {
	d, err := NewArrayDigester(arr.DataType(), newHash)
	if err != nil {
		return nil, err
	}
	if err := d.Update(arr, nil); err != nil {
		return nil, err
	}
	return d.Finalize(), nil
}
