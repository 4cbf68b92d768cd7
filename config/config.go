// Package config loads program settings from flags, IMGPREP_* environment
// variables, an optional .env file and an optional config file.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nvr-ai/go-imgprep/engines"
	"github.com/nvr-ai/go-imgprep/images"
	"github.com/nvr-ai/go-imgprep/logging"
	"github.com/nvr-ai/go-imgprep/oled"
)

// EnvPrefix prefixes every environment variable the programs read.
const EnvPrefix = "IMGPREP"

// Config holds the settings shared by the programs.
type Config struct {
	// Engine is the transform back end.
	Engine string `mapstructure:"engine"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `mapstructure:"log_level"`
	// LogFormat is console or json.
	LogFormat string `mapstructure:"log_format"`
	// Input is the source image path for programs that take it as a setting.
	Input string `mapstructure:"input"`
	// Output is the destination path for programs that take it as a setting.
	Output string `mapstructure:"output"`
	// OLED configures the packer.
	OLED OLEDConfig `mapstructure:"oled"`
}

// OLEDConfig configures oled.Export.
type OLEDConfig struct {
	Threshold int    `mapstructure:"threshold"`
	Dither    bool   `mapstructure:"dither"`
	Invert    bool   `mapstructure:"invert"`
	Symbol    string `mapstructure:"symbol"`
	Panel     string `mapstructure:"panel"`
	Format    string `mapstructure:"format"`
}

// Options selects the flags a program exposes on top of the common ones.
type Options struct {
	// PathFlags adds --input and --output.
	PathFlags bool
	// OLEDFlags adds --output and the packer flags.
	OLEDFlags bool
	// DefaultOutput is the default of the output setting.
	DefaultOutput string
	// RequiresInput makes a missing first positional argument fail with
	// *images.MissingArgumentError before any file is read.
	RequiresInput bool
}

func setDefaults(v *viper.Viper, opts Options) {
	v.SetDefault("engine", string(engines.EngineNative))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", string(logging.FormatConsole))
	v.SetDefault("input", "")
	v.SetDefault("output", opts.DefaultOutput)
	v.SetDefault("oled.threshold", oled.DefaultThreshold)
	v.SetDefault("oled.dither", false)
	v.SetDefault("oled.invert", false)
	v.SetDefault("oled.symbol", oled.DefaultSymbol)
	v.SetDefault("oled.panel", string(oled.PanelSprite))
	v.SetDefault("oled.format", string(oled.FormatHeader))
}

// Load resolves the configuration of program name from args.
// Precedence is flags, then environment, then config file, then defaults.
// Flags are parsed and the positional input checked before .env or the config
// file is opened.
//
// Arguments:
//   - name: Program name, used in usage output.
//   - args: Command line arguments without the program name.
//   - opts: Which optional flags the program accepts.
//
// Returns:
//   - *Config: The resolved configuration.
//   - []string: Positional arguments left after flag parsing.
//   - error: pflag.ErrHelp for -h, *images.MissingArgumentError, or a parse,
//     read or validation error.
func Load(name string, args []string, opts Options) (*Config, []string, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	configFile := fs.String("config", "", "Path to a YAML, TOML or JSON config file")
	fs.String("engine", "", "Transform engine: native, opencv or vips")
	fs.String("log-level", "", "Log level: debug, info, warn or error")
	fs.String("log-format", "", "Log format: console or json")
	bindings := map[string]string{
		"engine":     "engine",
		"log_level":  "log-level",
		"log_format": "log-format",
	}

	if opts.PathFlags {
		fs.String("input", "", "Path of the image to read")
		bindings["input"] = "input"
	}
	if opts.PathFlags || opts.OLEDFlags {
		fs.StringP("output", "o", "", "Path of the file to write")
		bindings["output"] = "output"
	}
	if opts.OLEDFlags {
		fs.Int("threshold", 0, "Lowest gray level that lights a pixel (0-255)")
		fs.Bool("dither", false, "Use Floyd-Steinberg error diffusion")
		fs.Bool("invert", false, "Light dark pixels instead of bright ones")
		fs.String("symbol", "", "Name of the C array")
		fs.String("panel", "", "Target geometry: "+panelNames())
		fs.String("format", "", "Output format: header or bin")
		bindings["oled.threshold"] = "threshold"
		bindings["oled.dither"] = "dither"
		bindings["oled.invert"] = "invert"
		bindings["oled.symbol"] = "symbol"
		bindings["oled.panel"] = "panel"
		bindings["oled.format"] = "format"
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if opts.RequiresInput && (fs.NArg() == 0 || fs.Arg(0) == "") {
		return nil, nil, &images.MissingArgumentError{Name: "input"}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, nil, errors.Wrap(err, "failed to load .env")
	}

	v := viper.New()
	setDefaults(v, opts)

	for key, flag := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to bind flag %s", flag)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to read config file %s", *configFile)
		}
	} else {
		v.SetConfigName("imgprep")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid config")
	}

	return &cfg, fs.Args(), nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	known := false
	for _, e := range engines.Engines {
		if string(e) == c.Engine {
			known = true
			break
		}
	}
	if !known {
		return errors.Errorf("unknown engine: %q", c.Engine)
	}

	switch logging.Format(c.LogFormat) {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return errors.Errorf("unknown log format: %q", c.LogFormat)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.OLED.Threshold < 0 || c.OLED.Threshold > 255 {
		return errors.Errorf("oled threshold out of range: %d", c.OLED.Threshold)
	}

	if oled.PanelType(c.OLED.Panel) != oled.PanelAuto {
		if _, err := oled.LookupPanel(oled.PanelType(c.OLED.Panel)); err != nil {
			return err
		}
	}

	switch oled.Format(c.OLED.Format) {
	case oled.FormatHeader, oled.FormatBinary:
	default:
		return errors.Errorf("unknown oled format: %q", c.OLED.Format)
	}

	return nil
}

// panelNames lists the accepted --panel values.
func panelNames() string {
	names := []string{string(oled.PanelAuto)}
	for _, p := range oled.Panels() {
		names = append(names, string(p.Name))
	}
	return strings.Join(names, ", ")
}
