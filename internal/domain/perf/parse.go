package perf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/refxpp/internal/domain/model"
)

const (
	formatHeader   = "osu file format v"
	maxLineLength  = 1 << 20
	defaultBeatLen = 500.0
	// maxTime bounds every object and timing point time to one day in ms.
	maxTime = 24 * 60 * 60 * 1000.0
)

type section int

const (
	secNone section = iota
	secGeneral
	secDifficulty
	secTimingPoints
	secHitObjects
	secOther
)

var sectionNames = map[string]section{
	"[General]":      secGeneral,
	"[Difficulty]":   secDifficulty,
	"[TimingPoints]": secTimingPoints,
	"[HitObjects]":   secHitObjects,
}

// hit object type bits
const (
	typeCircle  = 1 << 0
	typeSlider  = 1 << 1
	typeSpinner = 1 << 3
	typeHold    = 1 << 7
)

// LoadPath reads and parses the beatmap file at path.
func LoadPath(path string) (*Beatmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadBeatmap, err)
	}
	defer f.Close()
	return Parse(f)
}

// LoadBytes parses a beatmap from an in-memory buffer. The buffer is only
// read during the call.
func LoadBytes(b []byte) (*Beatmap, error) {
	return Parse(bytes.NewReader(b))
}

// Parse reads a beatmap in the .osu text format.
func Parse(r io.Reader) (*Beatmap, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	bm := &Beatmap{
		HPDrainRate:       5,
		CircleSize:        5,
		OverallDifficulty: 5,
		ApproachRate:      -1,
		SliderMultiplier:  1.4,
		SliderTickRate:    1,
	}

	var (
		lineNo     int
		headerSeen bool
		hitSection bool
		cur        = secNone
		rawObjects []string
	)

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if !headerSeen {
			if !strings.HasPrefix(line, formatHeader) {
				return nil, malformed(lineNo, "missing file format header")
			}
			v, err := strconv.Atoi(strings.TrimPrefix(line, formatHeader))
			if err != nil {
				return nil, malformed(lineNo, "bad format version")
			}
			bm.Version = v
			headerSeen = true
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			s, ok := sectionNames[line]
			if !ok {
				s = secOther
			}
			cur = s
			if s == secHitObjects {
				hitSection = true
			}
			continue
		}

		var err error
		switch cur {
		case secGeneral:
			err = parseGeneral(bm, line)
		case secDifficulty:
			err = parseDifficulty(bm, line)
		case secTimingPoints:
			err = parseTimingPoint(bm, line)
		case secHitObjects:
			rawObjects = append(rawObjects, line)
		}
		if err != nil {
			return nil, malformed(lineNo, err.Error())
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadBeatmap, err)
	}
	if !headerSeen {
		return nil, malformed(lineNo, "empty beatmap")
	}
	if !hitSection {
		return nil, malformed(lineNo, "no [HitObjects] section")
	}
	if bm.ApproachRate < 0 {
		// old formats share AR with OD
		bm.ApproachRate = bm.OverallDifficulty
	}

	sort.SliceStable(bm.TimingPoints, func(i, j int) bool {
		return bm.TimingPoints[i].Time < bm.TimingPoints[j].Time
	})

	timing := newTimingIndex(bm.TimingPoints)
	bm.Objects = make([]HitObject, 0, len(rawObjects))
	for _, raw := range rawObjects {
		o, err := parseHitObject(bm, timing, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: hit object %q: %s", ErrMalformedBeatmap, raw, err.Error())
		}
		bm.Objects = append(bm.Objects, o)
	}
	sort.SliceStable(bm.Objects, func(i, j int) bool {
		return bm.Objects[i].Time < bm.Objects[j].Time
	})

	return bm, nil
}

func malformed(line int, msg string) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedBeatmap, line, msg)
}

func keyValue(line string) (string, string, bool) {
	k, v, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(k), strings.TrimSpace(v), true
}

func parseGeneral(bm *Beatmap, line string) error {
	k, v, ok := keyValue(line)
	if !ok || k != "Mode" {
		return nil
	}
	raw, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return fmt.Errorf("bad mode %q", v)
	}
	m, err := model.ParseMode(uint32(raw))
	if err != nil {
		return err
	}
	bm.Mode = m
	return nil
}

func parseDifficulty(bm *Beatmap, line string) error {
	k, v, ok := keyValue(line)
	if !ok {
		return nil
	}
	var dst *float64
	switch k {
	case "HPDrainRate":
		dst = &bm.HPDrainRate
	case "CircleSize":
		dst = &bm.CircleSize
	case "OverallDifficulty":
		dst = &bm.OverallDifficulty
	case "ApproachRate":
		dst = &bm.ApproachRate
	case "SliderMultiplier":
		dst = &bm.SliderMultiplier
	case "SliderTickRate":
		dst = &bm.SliderTickRate
	default:
		return nil
	}
	f, err := parseFinite(v)
	if err != nil {
		return fmt.Errorf("bad %s", k)
	}
	*dst = f
	return nil
}

func parseTimingPoint(bm *Beatmap, line string) error {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return fmt.Errorf("timing point needs at least 2 fields")
	}
	t, err := parseTime(fields[0])
	if err != nil {
		return fmt.Errorf("bad timing point time")
	}
	bl, err := parseFinite(fields[1])
	if err != nil {
		return fmt.Errorf("bad beat length")
	}
	tp := TimingPoint{Time: t, BeatLength: bl, Uninherited: bl > 0}
	if len(fields) > 6 {
		tp.Uninherited = strings.TrimSpace(fields[6]) == "1"
	}
	bm.TimingPoints = append(bm.TimingPoints, tp)
	return nil
}

func parseHitObject(bm *Beatmap, timing timingIndex, line string) (HitObject, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 4 {
		return HitObject{}, fmt.Errorf("needs at least 4 fields")
	}
	x, errX := parseFinite(fields[0])
	y, errY := parseFinite(fields[1])
	t, errT := parseTime(fields[2])
	typ, errType := strconv.Atoi(strings.TrimSpace(fields[3]))
	if errX != nil || errY != nil || errT != nil || errType != nil {
		return HitObject{}, fmt.Errorf("bad position, time or type")
	}

	o := HitObject{X: x, Y: y, Time: t, EndTime: t}
	switch {
	case typ&typeCircle != 0:
		o.Kind = KindCircle
	case typ&typeSlider != 0:
		o.Kind = KindSlider
		if len(fields) < 8 {
			return HitObject{}, fmt.Errorf("slider needs 8 fields")
		}
		slides, err := strconv.Atoi(strings.TrimSpace(fields[6]))
		if err != nil || slides < 1 {
			return HitObject{}, fmt.Errorf("bad slide count")
		}
		length, err := parseFinite(fields[7])
		if err != nil || length < 0 {
			return HitObject{}, fmt.Errorf("bad slider length")
		}
		o.Slides, o.Length = slides, length
		beatLen, sv := timing.at(t)
		pxPerBeat := bm.SliderMultiplier * 100 * sv
		if pxPerBeat > 0 {
			o.EndTime = t + length/pxPerBeat*beatLen*float64(slides)
			if bm.SliderTickRate > 0 {
				tickDist := pxPerBeat / bm.SliderTickRate
				o.Ticks = max(0, int(math.Ceil(length/tickDist))-1)
			}
		}
	case typ&typeSpinner != 0:
		o.Kind = KindSpinner
		if len(fields) > 5 {
			if end, err := parseTime(fields[5]); err == nil {
				o.EndTime = end
			}
		}
	case typ&typeHold != 0:
		o.Kind = KindHold
		if len(fields) > 5 {
			end, _, _ := strings.Cut(fields[5], ":")
			if e, err := parseTime(end); err == nil {
				o.EndTime = e
			}
		}
	default:
		return HitObject{}, fmt.Errorf("unknown type %d", typ)
	}
	if o.EndTime < o.Time {
		o.EndTime = o.Time
	}
	if o.EndTime > maxTime {
		return HitObject{}, fmt.Errorf("end time out of range")
	}
	return o, nil
}

// timingState is the beat length and slider velocity after applying a
// prefix of the sorted timing points.
type timingState struct {
	beatLen float64
	sv      float64
	found   bool
}

// timingIndex answers timing lookups in O(log n) over sorted points.
type timingIndex struct {
	times  []float64
	states []timingState
	// first is the index of the first uninherited point, or -1.
	first int
}

func newTimingIndex(points []TimingPoint) timingIndex {
	idx := timingIndex{
		times:  make([]float64, len(points)),
		states: make([]timingState, len(points)),
		first:  -1,
	}
	st := timingState{beatLen: defaultBeatLen, sv: 1}
	for i, tp := range points {
		if tp.Uninherited {
			st = timingState{beatLen: tp.BeatLength, sv: 1, found: true}
			if idx.first < 0 {
				idx.first = i
			}
		} else if tp.BeatLength < 0 {
			st.sv = math.Min(10, math.Max(0.1, -100/tp.BeatLength))
		}
		idx.times[i] = tp.Time
		idx.states[i] = st
	}
	return idx
}

// at returns the beat length and slider velocity multiplier in effect at t.
// Before the first uninherited point that point's beat length applies.
func (idx timingIndex) at(t float64) (float64, float64) {
	n := len(idx.times)
	if n == 0 {
		return defaultBeatLen, 1
	}
	k := sort.Search(n, func(i int) bool { return idx.times[i] > t })
	switch {
	case k > 0 && idx.states[k-1].found:
		st := idx.states[k-1]
		return st.beatLen, st.sv
	case idx.first >= 0:
		st := idx.states[idx.first]
		return st.beatLen, st.sv
	default:
		st := idx.states[n-1]
		return st.beatLen, st.sv
	}
}

func parseTime(s string) (float64, error) {
	t, err := parseFinite(s)
	if err != nil {
		return 0, err
	}
	if math.Abs(t) > maxTime {
		return 0, fmt.Errorf("time %q out of range", strings.TrimSpace(s))
	}
	return t, nil
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return f, nil
}
