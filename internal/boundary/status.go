package boundary

import (
	"errors"
	"unicode/utf8"
	"unsafe"
)

// Status is the integer outcome returned by the native exports.
type Status int32

const (
	StatusOK           Status = 0
	StatusInvalidInput Status = 1
	StatusComputation  Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidInput:
		return "invalid_input"
	case StatusComputation:
		return "computation_failed"
	}
	return "unknown"
}

// StatusOf maps an error returned by this package to its status code.
// Unclassified errors count as computation failures.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInvalidInput):
		return StatusInvalidInput
	default:
		return StatusComputation
	}
}

// WriteMessage copies msg into the caller owned buffer buf of size n,
// truncating on a rune boundary as needed and always NUL terminating. It
// returns the number of message bytes written. A nil buffer or zero size
// writes nothing.
func WriteMessage(buf unsafe.Pointer, n uint32, msg string) int {
	if buf == nil || n == 0 {
		return 0
	}
	dst := unsafe.Slice((*byte)(buf), n)
	if len(msg) > int(n-1) {
		cut := int(n - 1)
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	w := copy(dst, msg)
	dst[w] = 0
	return w
}
