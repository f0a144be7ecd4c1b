package model

import "strings"

// Mods is the gameplay modifier bitmask. Flags combine independently.
type Mods uint32

// Mod flags.
const (
	ModNoFail      Mods = 1 << 0
	ModEasy        Mods = 1 << 1
	ModTouchDevice Mods = 1 << 2
	ModHidden      Mods = 1 << 3
	ModHardRock    Mods = 1 << 4
	ModSuddenDeath Mods = 1 << 5
	ModDoubleTime  Mods = 1 << 6
	ModRelax       Mods = 1 << 7
	ModHalfTime    Mods = 1 << 8
	ModNightcore   Mods = 1 << 9
	ModFlashlight  Mods = 1 << 10
	ModSpunOut     Mods = 1 << 12
	ModAutopilot   Mods = 1 << 13
	ModPerfect     Mods = 1 << 14
)

var modAcronyms = []struct {
	mod  Mods
	name string
}{
	{ModNoFail, "NF"},
	{ModEasy, "EZ"},
	{ModTouchDevice, "TD"},
	{ModHidden, "HD"},
	{ModHardRock, "HR"},
	{ModSuddenDeath, "SD"},
	{ModDoubleTime, "DT"},
	{ModRelax, "RX"},
	{ModHalfTime, "HT"},
	{ModNightcore, "NC"},
	{ModFlashlight, "FL"},
	{ModSpunOut, "SO"},
	{ModAutopilot, "AP"},
	{ModPerfect, "PF"},
}

// Has reports whether every flag in f is set.
func (m Mods) Has(f Mods) bool {
	return m&f == f
}

// ClockRate is the playback speed multiplier implied by the mods.
func (m Mods) ClockRate() float64 {
	switch {
	case m.Has(ModDoubleTime), m.Has(ModNightcore):
		return 1.5
	case m.Has(ModHalfTime):
		return 0.75
	default:
		return 1
	}
}

func (m Mods) String() string {
	if m == 0 {
		return "NM"
	}
	var b strings.Builder
	for _, a := range modAcronyms {
		if m.Has(a.mod) {
			b.WriteString(a.name)
		}
	}
	return b.String()
}
