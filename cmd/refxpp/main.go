// Command refxpp builds the native calculator library:
//
//	go build -buildmode=c-shared -o librefxpp.so ./cmd/refxpp
//
// Every export returns a status code and never panics into the host.
package main

/*
#include <stdbool.h>
#include <stdint.h>

typedef struct {
	double pp;
	double stars;
} CalculatePerformanceResult;

typedef struct {
	uint8_t has_value;
	uint32_t value;
} OptionU32;
*/
import "C"

import (
	"unsafe"

	"github.com/okian/refxpp/internal/boundary"
)

//export calculate_score
func calculate_score(
	beatmapPath *C.char,
	mode, mods, maxCombo C.uint32_t,
	accuracy C.double,
	missCount C.uint32_t,
	passedObjects C.OptionU32,
	ac C.uint32_t, arc C.double, hdr C.bool, tw C.uint32_t, cs C.bool,
	out *C.CalculatePerformanceResult,
	errBuf *C.char, errLen C.uint32_t,
) C.int32_t {
	args := pathArgs{
		path: unsafe.Pointer(beatmapPath),
		stats: stats{
			mode:     uint32(mode),
			mods:     uint32(mods),
			maxCombo: uint32(maxCombo),
			accuracy: float64(accuracy),
			misses:   uint32(missCount),
			scope:    boundary.OptionU32{HasValue: uint8(passedObjects.has_value), Value: uint32(passedObjects.value)},
		},
		ac:  uint32(ac),
		arc: float64(arc),
		hdr: bool(hdr),
		tw:  uint32(tw),
		cs:  bool(cs),
	}
	return C.int32_t(calculatePath(args, unsafe.Pointer(out), unsafe.Pointer(errBuf), uint32(errLen)))
}

//export calculate_score_bytes
func calculate_score_bytes(
	beatmapBytes *C.uint8_t, length C.uint32_t,
	mode, mods, maxCombo C.uint32_t,
	accuracy C.double,
	missCount C.uint32_t,
	passedObjects C.OptionU32,
	out *C.CalculatePerformanceResult,
	errBuf *C.char, errLen C.uint32_t,
) C.int32_t {
	args := bytesArgs{
		data:   unsafe.Pointer(beatmapBytes),
		length: uint32(length),
		stats: stats{
			mode:     uint32(mode),
			mods:     uint32(mods),
			maxCombo: uint32(maxCombo),
			accuracy: float64(accuracy),
			misses:   uint32(missCount),
			scope:    boundary.OptionU32{HasValue: uint8(passedObjects.has_value), Value: uint32(passedObjects.value)},
		},
	}
	return C.int32_t(calculateBytes(args, unsafe.Pointer(out), unsafe.Pointer(errBuf), uint32(errLen)))
}

func main() {}
