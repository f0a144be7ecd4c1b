// Package model holds the value types shared by the calculator components.
package model

import "fmt"

// Mode is the game type a beatmap is evaluated as.
type Mode uint32

// Known modes. The numeric values are part of the native boundary.
const (
	ModeOsu Mode = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

// ParseMode maps a raw boundary value onto a Mode.
func ParseMode(raw uint32) (Mode, error) {
	m := Mode(raw)
	if !m.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMode, raw)
	}
	return m, nil
}

// Valid reports whether m is one of the four known modes.
func (m Mode) Valid() bool {
	return m <= ModeMania
}

func (m Mode) String() string {
	switch m {
	case ModeOsu:
		return "osu"
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "catch"
	case ModeMania:
		return "mania"
	default:
		return fmt.Sprintf("mode(%d)", uint32(m))
	}
}
