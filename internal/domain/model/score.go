package model

// RelaxTuning holds the fine-tuning values only the relax calculator reads.
// The zero value is the inactive state.
type RelaxTuning struct {
	// AimCount caps how many of the hardest aim sections feed the length bonus.
	// Zero keeps every section.
	AimCount uint32
	// ARAdjust is added to the approach rate bonus factor.
	ARAdjust float64
	// HiddenRework swaps the flat hidden bonus for an AR-scaled one.
	HiddenRework bool
	// TapWindow is the minimum object spacing in milliseconds. Zero keeps the default.
	TapWindow uint32
	// ComboScaling enables the combo-ratio penalty.
	ComboScaling bool
}

// Score is the summary of a completed play as supplied by a caller.
type Score struct {
	Mode      uint32
	Mods      Mods
	MaxCombo  uint32
	MissCount uint32
	// Accuracy in percent, 0-100.
	Accuracy float64
	Scope    Scope
	Tuning   RelaxTuning
}
