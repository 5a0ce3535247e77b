package stereoproj

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config is everything one CLI run needs. Values are layered: built-in
// defaults, then the JSON file, then STEREOPROJ_* variables, then flags.
type Config struct {
	Input        string  `json:"input"                 env:"STEREOPROJ_INPUT"`
	Output       string  `json:"output"                env:"STEREOPROJ_OUTPUT"`
	Preview      string  `json:"preview,omitempty"     env:"STEREOPROJ_PREVIEW"` // optional thumbnail of the result
	PreviewSize  int     `json:"previewSize,omitempty" env:"STEREOPROJ_PREVIEW_SIZE"`
	OutputSize   int     `json:"outputSize"            env:"STEREOPROJ_OUTPUT_SIZE"`
	SphereRadius Real    `json:"sphereRadius"          env:"STEREOPROJ_SPHERE_RADIUS"`
	RadiusScale  Real    `json:"radiusScale"           env:"STEREOPROJ_RADIUS_SCALE"`
	Pole         Pole    `json:"pole"                  env:"STEREOPROJ_POLE"`
	RotDeg       Rot3Deg `json:"rotDeg"                envPrefix:"STEREOPROJ_ROT_"`
	Workers      int     `json:"workers,omitempty"     env:"STEREOPROJ_WORKERS"`
}

func DefaultConfig() Config {
	return Config{
		Output:       OutputPath,
		PreviewSize:  PreviewSize,
		OutputSize:   OutputSize,
		SphereRadius: SphereRadius,
		RadiusScale:  RadiusScale,
		Pole:         North,
		Workers:      Workers,
	}
}

// Params converts the config into validated projection parameters.
func (c Config) Params() (Params, error) {
	p := Params{
		RotX:         c.RotDeg.X,
		RotY:         c.RotDeg.Y,
		RotZ:         c.RotDeg.Z,
		SphereRadius: c.SphereRadius,
		Pole:         c.Pole,
		RadiusScale:  c.RadiusScale,
		OutputSize:   c.OutputSize,
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// Fields missing from the file keep their defaults; explicit values are
	// checked later by Config.Params.
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	DebugLog("Loaded config from %s: size=%d radius=%f scale=%f pole=%s rot=%+v",
		path, cfg.OutputSize, cfg.SphereRadius, cfg.RadiusScale, cfg.Pole, cfg.RotDeg)
	return &cfg, nil
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Input, "in", cfg.Input, "input equirectangular image (png, jpeg, gif, bmp, tiff, webp)")
	fs.StringVar(&cfg.Output, "out", cfg.Output, "output image path (.png or .jpg)")
	fs.StringVar(&cfg.Preview, "preview", cfg.Preview, "optional thumbnail path for the result")
	fs.IntVar(&cfg.PreviewSize, "preview-size", cfg.PreviewSize, "longest side of the preview thumbnail")
	fs.IntVar(&cfg.OutputSize, "size", cfg.OutputSize, "side of the square output in pixels")
	fs.Float64Var(&cfg.SphereRadius, "radius", cfg.SphereRadius, "sphere radius (typically 0.5..3)")
	fs.Float64Var(&cfg.RadiusScale, "scale", cfg.RadiusScale, "projection radius scale (typically 0.1..2)")
	fs.TextVar(&cfg.Pole, "pole", cfg.Pole, "projection pole: north or south")
	fs.Float64Var(&cfg.RotDeg.X, "rx", cfg.RotDeg.X, "rotation about X in degrees")
	fs.Float64Var(&cfg.RotDeg.Y, "ry", cfg.RotDeg.Y, "rotation about Y in degrees")
	fs.Float64Var(&cfg.RotDeg.Z, "rz", cfg.RotDeg.Z, "rotation about Z in degrees")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "row workers (defaults to the number of CPUs)")
}

// ParseConfig builds a Config from an optional -config JSON file,
// STEREOPROJ_* environment variables and flags, in increasing precedence.
// A single positional argument is taken as the input path when -in is unset.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var path string
	seen := DefaultConfig()
	fs.StringVar(&path, "config", os.Getenv("STEREOPROJ_CONFIG"), "JSON config file (env and flags override it)")
	bindFlags(fs, &seen)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if path != "" {
		loaded, err := loadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = *loaded
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	// Re-apply only the flags given on the command line.
	final := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
	bindFlags(final, &cfg)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || setErr != nil {
			return
		}
		setErr = final.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return Config{}, setErr
	}
	if cfg.Input == "" && fs.NArg() > 0 {
		cfg.Input = fs.Arg(0)
	}
	return cfg, nil
}
