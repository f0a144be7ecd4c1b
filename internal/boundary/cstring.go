package boundary

import (
	"fmt"
	"unicode/utf8"
	"unsafe"
)

// MaxPathLength bounds how far BorrowCString scans for the terminator.
const MaxPathLength = 4096

// BorrowCString reads the NUL terminated string at p. At most maxLen bytes
// are scanned. The bytes are copied, so nothing refers to p afterwards.
func BorrowCString(p unsafe.Pointer, maxLen int) (string, error) {
	const op = "boundary.BorrowCString"
	if p == nil {
		return "", invalid(op, fmt.Errorf("nil string"))
	}
	n := -1
	for i := 0; i < maxLen; i++ {
		if *(*byte)(unsafe.Add(p, i)) == 0 {
			n = i
			break
		}
	}
	if n < 0 {
		return "", invalid(op, fmt.Errorf("no terminator within %d bytes", maxLen))
	}
	b := unsafe.Slice((*byte)(p), n)
	if !utf8.Valid(b) {
		return "", invalid(op, fmt.Errorf("string is not valid UTF-8"))
	}
	return string(b), nil
}

// BorrowBytes views n bytes at p for the duration of a call. The returned
// slice aliases caller memory and must not be retained.
func BorrowBytes(p unsafe.Pointer, n uint32) ([]byte, error) {
	if p == nil {
		if n == 0 {
			return nil, nil
		}
		return nil, invalid("boundary.BorrowBytes", fmt.Errorf("nil buffer with length %d", n))
	}
	return unsafe.Slice((*byte)(p), n), nil
}
