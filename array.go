// Copyright 2026 The Arrowhash Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package arrowhash

import (
	"encoding/binary"
	"hash"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/cockroachdb/errors"
)

// ArrayDigester incrementally hashes the values of one column. The
// accumulator is seeded with the canonical encoding of the column's data type
// at construction, so even a zero-length column digests to a type-dependent
// value. The value-hashing strategy is also resolved at construction, rather
// than re-dispatching on the data type for every batch.
//
// A digester is one-shot: Finalize consumes it.
type ArrayDigester struct {
	newHash    func() hash.Hash
	hasher     hash.Hash
	hashValues func(arr arrow.Array, v *Validity) error
	elemSize   int            // byte width for the fixed-width strategy
	elemType   arrow.DataType // element type for the list strategy
	finalized  bool
}

// stringLike is satisfied by String and LargeString arrays. The two differ
// only in physical offset width and must digest identically.
type stringLike interface {
	arrow.Array
	Value(i int) string
}

// binaryLike is satisfied by Binary, LargeBinary, and FixedSizeBinary arrays.
type binaryLike interface {
	arrow.Array
	Value(i int) []byte
}

// NewArrayDigester returns a digester for columns of the given data type,
// with the type's canonical encoding already hashed. Types without a digest
// encoding return an error satisfying errors.Is(err, ErrUnsupportedType).
// Struct types are a caller error: flatten them through RecordDigester.
func NewArrayDigester(dt arrow.DataType, newHash func() hash.Hash) (*ArrayDigester, error) {
	d := &ArrayDigester{newHash: newHash, hasher: newHash()}
	if err := hashDataType(d.hasher, dt); err != nil {
		return nil, err
	}
	if size, ok := fixedWidthBytes(dt); ok {
		d.elemSize = size
		d.hashValues = d.hashFixedWidth
		return d, nil
	}
	switch dt.ID() {
	case arrow.BOOL:
		d.hashValues = d.hashBools
	case arrow.STRING, arrow.LARGE_STRING:
		d.hashValues = d.hashStrings
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		d.hashValues = d.hashBinary
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		elem, err := listElemType(dt)
		if err != nil {
			return nil, err
		}
		d.elemType = elem
		d.hashValues = d.hashLists
	default:
		panic(errors.AssertionFailedf(
			"arrowhash: %s passed schema encoding but has no value strategy", dt))
	}
	return d, nil
}

// Update feeds the values of arr into the digest. parent carries validity
// inherited from enclosing struct rows; nil means no inherited nulls. The
// array must match the data type the digester was constructed with, and
// batches must arrive in order.
func (d *ArrayDigester) Update(arr arrow.Array, parent *Validity) error {
	if d.finalized {
		panic(errors.AssertionFailedf("arrowhash: Update after Finalize"))
	}
	return d.hashValues(arr, combineValidity(NewValidity(arr), parent))
}

// Finalize consumes the digester and returns the digest.
func (d *ArrayDigester) Finalize() []byte {
	if d.finalized {
		panic(errors.AssertionFailedf("arrowhash: Finalize called twice"))
	}
	d.finalized = true
	return d.hasher.Sum(nil)
}

func (d *ArrayDigester) hashFixedWidth(arr arrow.Array, v *Validity) error {
	if arr.Len() == 0 {
		return nil
	}
	data := arr.Data()
	if len(data.Buffers()) != 2 {
		panic(errors.AssertionFailedf(
			"arrowhash: fixed-width array backed by %d buffers; want validity + values",
			len(data.Buffers())))
	}
	buf := data.Buffers()[1]
	if buf == nil {
		panic(errors.AssertionFailedf("arrowhash: fixed-width array has no value buffer"))
	}
	start := data.Offset() * d.elemSize
	n := arr.Len() * d.elemSize
	if len(buf.Bytes()) < start+n {
		panic(errors.AssertionFailedf(
			"arrowhash: value buffer holds %d bytes; need %d for %d elements of width %d",
			len(buf.Bytes()), start+n, arr.Len(), d.elemSize))
	}
	values := buf.Bytes()[start : start+n]

	if v == nil {
		// One value slot per element with no padding in between, so the
		// whole region hashes in a single call.
		d.hasher.Write(values)
		return nil
	}
	for i := 0; i < arr.Len(); i++ {
		if v.IsSet(i) {
			d.hasher.Write(values[i*d.elemSize : (i+1)*d.elemSize])
		} else {
			d.hasher.Write(nullMarker[:])
		}
	}
	return nil
}

// Boolean storage is bit-packed, so both paths go element by element. The
// encoding is 1-based (false is 1, true is 2) to keep false distinguishable
// from the null marker.
func (d *ArrayDigester) hashBools(arr arrow.Array, v *Validity) error {
	bools, ok := arr.(*array.Boolean)
	if !ok {
		panic(errors.AssertionFailedf("arrowhash: boolean digester got %T", arr))
	}
	if v == nil {
		for i := 0; i < bools.Len(); i++ {
			d.hasher.Write(boolByte(bools.Value(i)))
		}
		return nil
	}
	for i := 0; i < bools.Len(); i++ {
		if v.IsSet(i) {
			d.hasher.Write(boolByte(bools.Value(i)))
		} else {
			d.hasher.Write(nullMarker[:])
		}
	}
	return nil
}

var (
	boolFalse = [1]byte{1}
	boolTrue  = [1]byte{2}
)

func boolByte(b bool) []byte {
	if b {
		return boolTrue[:]
	}
	return boolFalse[:]
}

func (d *ArrayDigester) hashStrings(arr arrow.Array, v *Validity) error {
	strs, ok := arr.(stringLike)
	if !ok {
		panic(errors.AssertionFailedf("arrowhash: string digester got %T", arr))
	}
	var n [8]byte
	for i := 0; i < strs.Len(); i++ {
		if v != nil && !v.IsSet(i) {
			d.hasher.Write(nullMarker[:])
			continue
		}
		s := strs.Value(i)
		// The length prefix keeps adjacent values from colliding, e.g.
		// ["ab","c"] vs ["a","bc"].
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		d.hasher.Write(n[:])
		io.WriteString(d.hasher, s)
	}
	return nil
}

func (d *ArrayDigester) hashBinary(arr arrow.Array, v *Validity) error {
	bins, ok := arr.(binaryLike)
	if !ok {
		panic(errors.AssertionFailedf("arrowhash: binary digester got %T", arr))
	}
	var n [8]byte
	for i := 0; i < bins.Len(); i++ {
		if v != nil && !v.IsSet(i) {
			d.hasher.Write(nullMarker[:])
			continue
		}
		b := bins.Value(i)
		// FixedSizeBinary emits its statically known size here too, keeping
		// the framing uniform across the binary family.
		binary.LittleEndian.PutUint64(n[:], uint64(len(b)))
		d.hasher.Write(n[:])
		d.hasher.Write(b)
	}
	return nil
}

func (d *ArrayDigester) hashLists(arr arrow.Array, v *Validity) error {
	lists, ok := arr.(array.ListLike)
	if !ok {
		panic(errors.AssertionFailedf("arrowhash: list digester got %T", arr))
	}
	values := lists.ListValues()
	var n [8]byte
	for i := 0; i < lists.Len(); i++ {
		if v != nil && !v.IsSet(i) {
			d.hasher.Write(nullMarker[:])
			continue
		}
		start, end := lists.ValueOffsets(i)
		binary.LittleEndian.PutUint64(n[:], uint64(end-start))
		d.hasher.Write(n[:])

		// The child digest covers exactly the elements belonging to this
		// entry, so shifting a value across an entry boundary changes both
		// neighboring digests. Validity context does not cross into the
		// recursion: the child slice carries its own bitmap and starts
		// fresh.
		entry := array.NewSlice(values, start, end)
		sub, err := NewArrayDigester(d.elemType, d.newHash)
		if err == nil {
			err = sub.Update(entry, nil)
		}
		entry.Release()
		if err != nil {
			return err
		}
		d.hasher.Write(sub.Finalize())
	}
	return nil
}
