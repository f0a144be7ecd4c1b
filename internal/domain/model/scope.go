package model

import "strconv"

// Scope limits evaluation to the first N beatmap objects. The zero value is
// None, so an absent scope can never be confused with Some(0).
type Scope struct {
	n   uint32
	set bool
}

// Some returns a present scope of n objects.
func Some(n uint32) Scope { return Scope{n: n, set: true} }

// None returns an absent scope: the whole beatmap is evaluated.
func None() Scope { return Scope{} }

// Get returns the object count and whether it is present.
func (s Scope) Get() (uint32, bool) { return s.n, s.set }

// IsSome reports whether the scope is present.
func (s Scope) IsSome() bool { return s.set }

func (s Scope) String() string {
	if !s.set {
		return "None"
	}
	return "Some(" + strconv.FormatUint(uint64(s.n), 10) + ")"
}
