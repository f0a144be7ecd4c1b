package boundary

import (
	"fmt"

	"github.com/okian/refxpp/internal/domain/model"
)

// OptionU32 is the C layout of an optional uint32: a presence flag followed
// by the payload. The flag deliberately comes first, unlike FFIOption<u32>.
type OptionU32 struct {
	HasValue uint8
	_        [3]byte
	Value    uint32
}

// SomeU32 returns a present OptionU32.
func SomeU32(v uint32) OptionU32 { return OptionU32{HasValue: 1, Value: v} }

// Scope decodes the option. Any flag other than 0 or 1 is rejected.
func (o OptionU32) Scope() (model.Scope, error) {
	switch o.HasValue {
	case 0:
		return model.None(), nil
	case 1:
		return model.Some(o.Value), nil
	}
	return model.Scope{}, invalid("boundary.OptionU32", fmt.Errorf("presence flag %d", o.HasValue))
}

// OptionFromScope encodes s.
func OptionFromScope(s model.Scope) OptionU32 {
	if n, ok := s.Get(); ok {
		return SomeU32(n)
	}
	return OptionU32{}
}
