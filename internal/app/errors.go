package service

import "errors"

// Request validation kinds. The service reports them as boundary input
// failures so they map to the same status as the calculator's own.
var (
	ErrNoBeatmap       = errors.New("exactly one of beatmap path or beatmap bytes is required")
	ErrPathsDisabled   = errors.New("path requests are disabled")
	ErrPathOutsideDir  = errors.New("beatmap path escapes the beatmap directory")
	ErrBeatmapTooLarge = errors.New("beatmap exceeds the size limit")
	ErrBatchTooLarge   = errors.New("batch exceeds the size limit")
)
