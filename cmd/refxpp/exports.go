package main

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/okian/refxpp/internal/boundary"
	"github.com/okian/refxpp/internal/domain/model"
)

// stats are the score values shared by both exports.
type stats struct {
	mode     uint32
	mods     uint32
	maxCombo uint32
	accuracy float64
	misses   uint32
	scope    boundary.OptionU32
}

func (s stats) score() (model.Score, error) {
	scope, err := s.scope.Scope()
	if err != nil {
		return model.Score{}, err
	}
	return model.Score{
		Mode:      s.mode,
		Mods:      model.Mods(s.mods),
		MaxCombo:  s.maxCombo,
		MissCount: s.misses,
		Accuracy:  s.accuracy,
		Scope:     scope,
	}, nil
}

type pathArgs struct {
	path  unsafe.Pointer
	stats stats

	ac  uint32
	arc float64
	hdr bool
	tw  uint32
	cs  bool
}

type bytesArgs struct {
	data   unsafe.Pointer
	length uint32
	stats  stats
}

var errNilOut = errors.New("nil result pointer")

func calculatePath(a pathArgs, out, errBuf unsafe.Pointer, errLen uint32) boundary.Status {
	return finish(out, errBuf, errLen, func() (model.Result, error) {
		path, err := boundary.BorrowCString(a.path, boundary.MaxPathLength)
		if err != nil {
			return model.Result{}, err
		}
		score, err := a.stats.score()
		if err != nil {
			return model.Result{}, err
		}
		score.Tuning = model.RelaxTuning{
			AimCount:     a.ac,
			ARAdjust:     a.arc,
			HiddenRework: a.hdr,
			TapWindow:    a.tw,
			ComboScaling: a.cs,
		}
		return boundary.CalculateScore(boundary.PathRequest{Path: path, Score: score})
	})
}

func calculateBytes(a bytesArgs, out, errBuf unsafe.Pointer, errLen uint32) boundary.Status {
	return finish(out, errBuf, errLen, func() (model.Result, error) {
		data, err := boundary.BorrowBytes(a.data, a.length)
		if err != nil {
			return model.Result{}, err
		}
		score, err := a.stats.score()
		if err != nil {
			return model.Result{}, err
		}
		return boundary.CalculateScoreBytes(boundary.BytesRequest{Data: data, Score: score})
	})
}

// finish runs calc, stores the result in out on success and the message in
// errBuf on failure. out is left untouched when the call fails.
func finish(out, errBuf unsafe.Pointer, errLen uint32, calc func() (model.Result, error)) (status boundary.Status) {
	defer func() {
		if r := recover(); r != nil {
			err := &boundary.Error{Op: "export", Kind: boundary.ErrComputation, Err: fmt.Errorf("panic: %v", r)}
			boundary.WriteMessage(errBuf, errLen, err.Error())
			status = boundary.StatusOf(err)
		}
	}()

	if out == nil {
		err := &boundary.Error{Op: "export", Kind: boundary.ErrInvalidInput, Err: errNilOut}
		boundary.WriteMessage(errBuf, errLen, err.Error())
		return boundary.StatusOf(err)
	}
	res, err := calc()
	if err != nil {
		boundary.WriteMessage(errBuf, errLen, err.Error())
		return boundary.StatusOf(err)
	}
	*(*model.Result)(out) = res
	boundary.WriteMessage(errBuf, errLen, "")
	return boundary.StatusOK
}
