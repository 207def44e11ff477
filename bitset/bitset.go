// Package bitset provides a set of mir locals usable as a dataflow domain.
package bitset

import (
	"bytes"

	"github.com/nickng/mirflow/mir"
	"golang.org/x/tools/container/intsets"
)

// Set is a set of locals. The zero value is an empty set. A Set must not be
// copied by value; use Clone.
type Set struct {
	bits intsets.Sparse
}

// New returns a Set containing locals.
func New(locals ...mir.Local) *Set {
	s := new(Set)
	for _, l := range locals {
		s.bits.Insert(int(l))
	}
	return s
}

// Clone returns an independent copy of s.
func (s *Set) Clone() *Set {
	c := new(Set)
	c.bits.Copy(&s.bits)
	return c
}

// CloneFrom overwrites s with the contents of src.
func (s *Set) CloneFrom(src *Set) { s.bits.Copy(&src.bits) }

// Join adds every local of other to s and reports whether s changed.
func (s *Set) Join(other *Set) bool { return s.bits.UnionWith(&other.bits) }

// Insert adds l to s and reports whether it was absent.
func (s *Set) Insert(l mir.Local) bool { return s.bits.Insert(int(l)) }

// Remove removes l from s and reports whether it was present.
func (s *Set) Remove(l mir.Local) bool { return s.bits.Remove(int(l)) }

// Has reports whether l is in s.
func (s *Set) Has(l mir.Local) bool { return s.bits.Has(int(l)) }

// Len returns the number of locals in s.
func (s *Set) Len() int { return s.bits.Len() }

// Equals reports whether s and other hold the same locals.
func (s *Set) Equals(other *Set) bool { return s.bits.Equals(&other.bits) }

// Locals returns the locals of s in increasing order.
func (s *Set) Locals() []mir.Local {
	ints := s.bits.AppendTo(nil)
	locals := make([]mir.Local, len(ints))
	for i, v := range ints {
		locals[i] = mir.Local(v)
	}
	return locals
}

// Diff returns the locals in s but not old, and those in old but not s.
func (s *Set) Diff(old *Set) (added, removed []mir.Local) {
	var d Set
	d.bits.Difference(&s.bits, &old.bits)
	added = d.Locals()
	d.bits.Difference(&old.bits, &s.bits)
	removed = d.Locals()
	return added, removed
}

func (s *Set) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range s.Locals() {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(l.String())
	}
	buf.WriteByte('}')
	return buf.String()
}
