// Copyright 2026 The Arrowhash Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package arrowhash

import (
	"hash"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/cockroachdb/errors"
)

// RecordDigester hashes record batches sharing one schema into a single
// digest.
//
// Construction walks the field tree pre-order and hashes every field's name
// and nesting level into a top-level accumulator, so renaming or reordering
// fields changes the digest even when values do not. Every leaf (non-struct)
// field gets its own ArrayDigester in traversal order; struct fields
// contribute only their name/level entry, existing purely to establish
// nesting context for their children.
//
// A digester is one-shot: Finalize consumes it.
type RecordDigester struct {
	hasher    hash.Hash
	columns   []*ArrayDigester
	finalized bool
}

// NewRecordDigester returns a digester for batches of the given schema. Any
// field (at any nesting depth) whose type has no digest encoding makes
// construction fail with an error satisfying
// errors.Is(err, ErrUnsupportedType).
func NewRecordDigester(schema *arrow.Schema, newHash func() hash.Hash) (*RecordDigester, error) {
	d := &RecordDigester{hasher: newHash()}
	for _, f := range schema.Fields() {
		if err := d.addField(f, 0, newHash); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *RecordDigester) addField(f arrow.Field, level uint64, newHash func() hash.Hash) error {
	putU64(d.hasher, uint64(len(f.Name)))
	d.hasher.Write([]byte(f.Name))
	putU64(d.hasher, level)

	if st, ok := f.Type.(*arrow.StructType); ok {
		for _, child := range st.Fields() {
			if err := d.addField(child, level+1, newHash); err != nil {
				return err
			}
		}
		return nil
	}
	col, err := NewArrayDigester(f.Type, newHash)
	if err != nil {
		return err
	}
	d.columns = append(d.columns, col)
	return nil
}

// Update feeds one record batch into the digest. Batches must arrive in row
// order and match the schema the digester was constructed with.
func (d *RecordDigester) Update(rec arrow.Record) error {
	if d.finalized {
		panic(errors.AssertionFailedf("arrowhash: Update after Finalize"))
	}
	next := 0
	for _, col := range rec.Columns() {
		if err := d.updateColumn(col, nil, &next); err != nil {
			return err
		}
	}
	if next != len(d.columns) {
		panic(errors.AssertionFailedf(
			"arrowhash: batch produced %d leaf columns; schema declared %d",
			next, len(d.columns)))
	}
	return nil
}

// updateColumn recurses into struct columns, carrying the conjunction of
// enclosing struct validity down to the leaves: a leaf value is null in the
// digest's sense if it is null itself or any enclosing struct row is. This is
// the one place inherited validity crosses a nesting boundary; list recursion
// inside ArrayDigester starts fresh instead.
func (d *RecordDigester) updateColumn(arr arrow.Array, inherited *Validity, next *int) error {
	if structs, ok := arr.(*array.Struct); ok {
		eff := combineValidity(NewValidity(structs), inherited)
		for i := 0; i < structs.NumField(); i++ {
			if err := d.updateColumn(structs.Field(i), eff, next); err != nil {
				return err
			}
		}
		return nil
	}
	if *next >= len(d.columns) {
		panic(errors.AssertionFailedf(
			"arrowhash: batch produced more leaf columns than the schema declared"))
	}
	col := d.columns[*next]
	*next++
	return col.Update(arr, inherited)
}

// Finalize hashes each column digest into the top-level accumulator in
// creation order and returns the final digest, consuming the digester.
// Column order therefore matters positionally: swapping two columns changes
// the result even when their types and values match.
func (d *RecordDigester) Finalize() []byte {
	if d.finalized {
		panic(errors.AssertionFailedf("arrowhash: Finalize called twice"))
	}
	d.finalized = true
	for _, col := range d.columns {
		d.hasher.Write(col.Finalize())
	}
	return d.hasher.Sum(nil)
}
