// Copyright 2026 The Arrowhash Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package arrowhash

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/cockroachdb/errors"
)

// Validity is a read-only view of an Arrow validity bitmap: one bit per row,
// set when the row is present. A nil *Validity means every row is valid.
//
// When digesting nested data, the effective validity of a value is the
// conjunction of its own bitmap with every enclosing struct row's bitmap.
// That conjunction is computed on the fly and scoped to a single digesting
// pass; value buffers are never copied, only the small bitmap is.
type Validity struct {
	buf    []byte
	offset int
	length int
}

// NewValidity returns the validity view of arr, or nil when the array
// contains no nulls. An absent bitmap and an all-valid bitmap are equivalent
// for digesting, which is what keeps a nullable-but-null-free column's digest
// equal to a non-nullable one's.
func NewValidity(arr arrow.Array) *Validity {
	if arr.NullN() == 0 {
		return nil
	}
	buf := arr.NullBitmapBytes()
	if len(buf) == 0 {
		return nil
	}
	return &Validity{buf: buf, offset: arr.Data().Offset(), length: arr.Len()}
}

// Len returns the number of rows covered by the bitmap.
func (v *Validity) Len() int { return v.length }

// IsSet reports whether row i is present.
func (v *Validity) IsSet(i int) bool {
	return bitutil.BitIsSet(v.buf, v.offset+i)
}

// and returns the bitwise conjunction of two bitmaps: a row is valid only
// where both inputs are valid. The inputs may sit at different bit offsets
// within their backing buffers; their lengths must match.
func (v *Validity) and(o *Validity) *Validity {
	if v.length != o.length {
		panic(errors.AssertionFailedf(
			"arrowhash: combining validity bitmaps of different lengths: %d != %d",
			v.length, o.length))
	}
	out := make([]byte, bitutil.BytesForBits(int64(v.length)))
	bitutil.BitmapAnd(v.buf, o.buf, int64(v.offset), int64(o.offset), out, 0, int64(v.length))
	return &Validity{buf: out, length: v.length}
}

// combineValidity merges an array's own validity with the validity inherited
// from enclosing structs. Either side may be nil, meaning all rows valid; the
// result is nil only when both are.
func combineValidity(own, inherited *Validity) *Validity {
	switch {
	case own == nil:
		return inherited
	case inherited == nil:
		return own
	default:
		return own.and(inherited)
	}
}
