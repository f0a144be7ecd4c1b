// Package variant decides which calculator family evaluates a play.
package variant

import (
	"github.com/okian/refxpp/internal/domain/model"
)

// Family names a calculator family.
type Family uint8

const (
	// Generic supports all four modes.
	Generic Family = iota
	// Relax is only reachable for osu!standard plays with the Relax mod.
	Relax
)

func (f Family) String() string {
	if f == Relax {
		return "relax"
	}
	return "generic"
}

// Variant is the selected family plus the mode it runs under.
type Variant struct {
	Family Family
	Mode   model.Mode
}

func (v Variant) String() string {
	return v.Family.String() + "/" + v.Mode.String()
}

// IsRelax reports whether the relax family was selected.
func (v Variant) IsRelax() bool { return v.Family == Relax }

// Select picks the calculator family for a raw mode and mods pair. Relax is
// chosen iff mode is osu!standard and the Relax bit is set. An unknown mode
// is reported as model.ErrInvalidMode.
func Select(mode uint32, mods model.Mods) (Variant, error) {
	if mode == uint32(model.ModeOsu) && mods.Has(model.ModRelax) {
		return Variant{Family: Relax, Mode: model.ModeOsu}, nil
	}
	m, err := model.ParseMode(mode)
	if err != nil {
		return Variant{}, err
	}
	return Variant{Family: Generic, Mode: m}, nil
}
