package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/nvr-ai/go-imgprep/config"
	"github.com/nvr-ai/go-imgprep/oled"
	"github.com/nvr-ai/go-imgprep/runner"
)

// Resize stretches the image named by the first argument to 32x32 and writes
// resized_image.jpg.
var Resize = Program{
	Name:    "resize",
	Options: config.Options{RequiresInput: true},
	Run: func(ctx context.Context, env *Env, args []string) error {
		input, err := firstArg(args)
		if err != nil {
			return err
		}
		return runJob(ctx, env, runner.ResizeJob(input))
	},
}

// Grayscale converts the image named by the first argument and writes gray_image.jpg.
var Grayscale = Program{
	Name:    "grayscale",
	Options: config.Options{RequiresInput: true},
	Run: func(ctx context.Context, env *Env, args []string) error {
		input, err := firstArg(args)
		if err != nil {
			return err
		}
		return runJob(ctx, env, runner.GrayscaleJob(input, runner.GrayscaleOutput))
	},
}

// GrayConvert converts the configured input path and writes the configured output path.
// Both are required; they come from --input/--output, IMGPREP_INPUT/IMGPREP_OUTPUT
// or the config file.
var GrayConvert = Program{
	Name:    "grayconvert",
	Options: config.Options{PathFlags: true},
	Run: func(ctx context.Context, env *Env, _ []string) error {
		return runJob(ctx, env, runner.GrayscaleJob(env.Config.Input, env.Config.Output))
	},
}

// OLEDPack packs the image named by the first argument for an SSD1306 panel,
// either as a C header or as the raw page bytes.
var OLEDPack = Program{
	Name:    "oledpack",
	Options: config.Options{OLEDFlags: true, DefaultOutput: oled.DefaultOutput, RequiresInput: true},
	Run: func(ctx context.Context, env *Env, args []string) error {
		input, err := firstArg(args)
		if err != nil {
			return err
		}

		c := env.Config.OLED
		format := oled.Format(c.Format)
		output := env.Config.Output
		if format == oled.FormatBinary && output == oled.DefaultOutput {
			output = oled.DefaultBinaryOutput
		}

		bm, err := oled.Export(ctx, input, output, oled.Options{
			BinarizeOptions: oled.BinarizeOptions{
				Threshold: uint8(c.Threshold),
				Dither:    c.Dither,
				Invert:    c.Invert,
			},
			Symbol: c.Symbol,
			Format: format,
			Panel:  oled.PanelType(c.Panel),
		})
		if err != nil {
			return err
		}

		fields := []zap.Field{
			zap.String("input", input),
			zap.String("output", output),
			zap.String("format", string(format)),
			zap.Int("width", bm.Width),
			zap.Int("height", bm.Height),
			zap.Int("pages", bm.Pages()),
			zap.Int("bytes", len(bm.Data)),
		}
		if panel, ok := bm.Panel(); ok {
			fields = append(fields, zap.Stringer("panel", panel))
		}
		env.Logger.Info("bitmap written", fields...)
		return nil
	},
}
