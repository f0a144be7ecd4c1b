package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/refxpp/internal/boundary"
	"github.com/okian/refxpp/internal/domain/model"
	"github.com/okian/refxpp/internal/domain/scoring"
	"github.com/okian/refxpp/pkg/logger"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagBeatmap       = "beatmap"
	flagBytes         = "bytes"
	flagMode          = "mode"
	flagMods          = "mods"
	flagCombo         = "combo"
	flagMisses        = "misses"
	flagAccuracy      = "accuracy"
	flagPassedObjects = "passed-objects"
	flagAccuracyScale = "accuracy-scale"
	flagAimCount      = "aim-count"
	flagARAdjust      = "ar-adjust"
	flagHiddenRework  = "hidden-rework"
	flagTapWindow     = "tap-window"
	flagComboScaling  = "combo-scaling"
	flagFormat        = "format"
)

func (a *app) calculateCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "calculate",
		Usage: "Calculate pp and stars for one play",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: flagBeatmap, Usage: "Path to the .osu file", Required: true},
			&urfave.BoolFlag{Name: flagBytes, Usage: "Read the file and use the buffer entry point (tuning flags are ignored)"},
			&urfave.Uint32Flag{Name: flagMode, Usage: "Game mode [0 osu, 1 taiko, 2 catch, 3 mania]"},
			&urfave.Uint32Flag{Name: flagMods, Usage: "Mod bit flags"},
			&urfave.Uint32Flag{Name: flagCombo, Usage: "Highest combo reached"},
			&urfave.Uint32Flag{Name: flagMisses, Usage: "Number of misses"},
			&urfave.FloatFlag{Name: flagAccuracy, Usage: "Accuracy", Required: true},
			&urfave.Uint32Flag{Name: flagPassedObjects, Usage: "Evaluate only the first N objects (optional)"},
			&urfave.StringFlag{Name: flagAccuracyScale, Usage: "How accuracy is read [percent, fraction]", Value: string(scoring.ScalePercent)},
			&urfave.Uint32Flag{Name: flagAimCount, Usage: "Relax: hardest aim sections kept"},
			&urfave.FloatFlag{Name: flagARAdjust, Usage: "Relax: approach rate bonus adjustment"},
			&urfave.BoolFlag{Name: flagHiddenRework, Usage: "Relax: AR scaled hidden bonus"},
			&urfave.Uint32Flag{Name: flagTapWindow, Usage: "Relax: minimum object spacing in ms"},
			&urfave.BoolFlag{Name: flagComboScaling, Usage: "Relax: combo ratio penalty"},
			&urfave.StringFlag{Name: flagFormat, Usage: "Output format [json, yaml, text]", Value: formatJSON},
		},
		Action: a.calculate,
	}
}

func scoreFromFlags(cmd *urfave.Command) model.Score {
	s := model.Score{
		Mode:      cmd.Uint32(flagMode),
		Mods:      model.Mods(cmd.Uint32(flagMods)),
		MaxCombo:  cmd.Uint32(flagCombo),
		MissCount: cmd.Uint32(flagMisses),
		Accuracy:  cmd.Float(flagAccuracy),
		Tuning: model.RelaxTuning{
			AimCount:     cmd.Uint32(flagAimCount),
			ARAdjust:     cmd.Float(flagARAdjust),
			HiddenRework: cmd.Bool(flagHiddenRework),
			TapWindow:    cmd.Uint32(flagTapWindow),
			ComboScaling: cmd.Bool(flagComboScaling),
		},
	}
	if cmd.IsSet(flagPassedObjects) {
		s.Scope = model.Some(cmd.Uint32(flagPassedObjects))
	}
	return s
}

func (a *app) calculate(ctx context.Context, cmd *urfave.Command) error {
	format := cmd.String(flagFormat)
	switch format {
	case formatJSON, formatYAML, formatText:
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
	scale, err := scoring.ParseAccuracyScale(cmd.String(flagAccuracyScale))
	if err != nil {
		return err
	}

	calc := boundary.NewCalculator(scoring.NewBuilder(scoring.WithAccuracyScale(scale)))
	score := scoreFromFlags(cmd)
	path := cmd.String(flagBeatmap)

	v, err := calc.Select(score)
	if err != nil {
		return err
	}
	log := a.log.With(logger.String("beatmap", path), logger.String("variant", v.String()))

	start := time.Now()
	var res model.Result
	if cmd.Bool(flagBytes) {
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return fmt.Errorf("read beatmap: %w", rerr)
		}
		res, err = calc.CalculateScoreBytes(boundary.BytesRequest{Data: data, Score: score})
	} else {
		res, err = calc.CalculateScore(boundary.PathRequest{Path: path, Score: score})
	}
	if err != nil {
		log.Debug(ctx, "calculation failed", logger.Error(err))
		return err
	}
	log.Debug(ctx, "calculated",
		logger.Float64("pp", res.PP),
		logger.Float64("stars", res.Stars),
		logger.Duration("took", time.Since(start)),
	)

	if format == formatText {
		return printValue(a.out, format, res.String())
	}
	return printValue(a.out, format, res)
}
