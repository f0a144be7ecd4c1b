package perf

import (
	"math"
	"slices"
)

const (
	sectionLength = 400.0
	peakWeight    = 0.9
	// maxDecaySections bounds how many empty sections in a gap record a
	// decayed peak before the rest of the gap is skipped.
	maxDecaySections = 32
)

// strainSkill accumulates a decaying strain and records its peak for every
// fixed length section of the chart.
type strainSkill struct {
	multiplier float64
	decayBase  float64
	// topN keeps only the N hardest sections when > 0.
	topN int

	current    float64
	peak       float64
	prevTime   float64
	sectionEnd float64
	started    bool
	peaks      []float64
}

func newStrainSkill(multiplier, decayBase float64) *strainSkill {
	return &strainSkill{multiplier: multiplier, decayBase: decayBase}
}

func (s *strainSkill) decay(ms float64) float64 {
	return math.Pow(s.decayBase, ms/1000)
}

// process adds value at time t (ms, already rate adjusted) after delta ms.
func (s *strainSkill) process(t, delta, value float64) {
	if !s.started {
		s.sectionEnd = (math.Floor(t/sectionLength) + 1) * sectionLength
		s.prevTime = t
		s.started = true
	}
	for empty := 0; t > s.sectionEnd; empty++ {
		s.peaks = append(s.peaks, s.peak)
		if s.peak == 0 || empty == maxDecaySections {
			// later sections of the gap hold negligible strain
			s.sectionEnd = math.Ceil(t/sectionLength) * sectionLength
			s.peak = s.current * s.decay(s.sectionEnd-sectionLength-s.prevTime)
			break
		}
		s.peak = s.current * s.decay(s.sectionEnd-s.prevTime)
		s.sectionEnd += sectionLength
	}
	s.current = s.current*s.decay(delta) + value*s.multiplier
	s.peak = math.Max(s.peak, s.current)
	s.prevTime = t
}

// difficulty is the weighted sum of section peaks, hardest first.
func (s *strainSkill) difficulty() float64 {
	if !s.started {
		return 0
	}
	peaks := append(slices.Clone(s.peaks), s.peak)
	slices.SortFunc(peaks, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		default:
			return 0
		}
	})
	if s.topN > 0 && len(peaks) > s.topN {
		peaks = peaks[:s.topN]
	}
	total, weight := 0.0, 1.0
	for _, p := range peaks {
		total += p * weight
		weight *= peakWeight
	}
	return total
}
