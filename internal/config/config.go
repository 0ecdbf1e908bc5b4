package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Versifine/gravitation/internal/level"
	"github.com/Versifine/gravitation/internal/physics"
)

// EnvPrefix namespaces every environment override, e.g.
// GRAVITATION_LEVEL_TIME_LIMIT=90s.
const EnvPrefix = "GRAVITATION_"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Physics  PhysicsConfig  `yaml:"physics" envPrefix:"PHYSICS_"`
	Level    LevelConfig    `yaml:"level" envPrefix:"LEVEL_"`
	Controls ControlsConfig `yaml:"controls" envPrefix:"CONTROLS_"`
	Graphics GraphicsConfig `yaml:"graphics" envPrefix:"GRAPHICS_"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOG_"`
	Observer ObserverConfig `yaml:"observer" envPrefix:"OBSERVER_"`
	Storage  StorageConfig  `yaml:"storage" envPrefix:"STORAGE_"`
}

type PhysicsConfig struct {
	Hz                 int     `yaml:"hz" env:"HZ"`
	VelocityIterations int     `yaml:"velocity_iterations" env:"VELOCITY_ITERATIONS"`
	PositionIterations int     `yaml:"position_iterations" env:"POSITION_ITERATIONS"`
	Gravity            float64 `yaml:"gravity" env:"GRAVITY"`
	BoundsMargin       float64 `yaml:"bounds_margin" env:"BOUNDS_MARGIN"`
}

type LevelConfig struct {
	Name                string        `yaml:"name" env:"NAME"`
	Width               float64       `yaml:"width" env:"WIDTH"`
	Height              float64       `yaml:"height" env:"HEIGHT"`
	WallThickness       float64       `yaml:"wall_thickness" env:"WALL_THICKNESS"`
	TimeLimit           time.Duration `yaml:"time_limit" env:"TIME_LIMIT"`
	SparkRadius         float64       `yaml:"spark_radius" env:"SPARK_RADIUS"`
	SparkLifetime       time.Duration `yaml:"spark_lifetime" env:"SPARK_LIFETIME"`
	SparkSpeedThreshold float64       `yaml:"spark_speed_threshold" env:"SPARK_SPEED_THRESHOLD"`
}

type ControlsConfig struct {
	// Gravity selects the world-angle controller: stepped, continuous or
	// constant.
	Gravity      string        `yaml:"gravity" env:"GRAVITY"`
	TurnDuration time.Duration `yaml:"turn_duration" env:"TURN_DURATION"`
	TurnInterval time.Duration `yaml:"turn_interval" env:"TURN_INTERVAL"`
	TurnDelta    float64       `yaml:"turn_delta" env:"TURN_DELTA"`
	MoveImpulse  float64       `yaml:"move_impulse" env:"MOVE_IMPULSE"`
	MoveInterval time.Duration `yaml:"move_interval" env:"MOVE_INTERVAL"`
	JumpImpulse  float64       `yaml:"jump_impulse" env:"JUMP_IMPULSE"`
	// KeyPulse is how long a terminal key counts as held after its last
	// byte arrived.
	KeyPulse time.Duration `yaml:"key_pulse" env:"KEY_PULSE"`
}

type GraphicsConfig struct {
	ScreenWidth  float64       `yaml:"screen_width" env:"SCREEN_WIDTH"`
	ScreenHeight float64       `yaml:"screen_height" env:"SCREEN_HEIGHT"`
	InitialZoom  float64       `yaml:"initial_zoom" env:"INITIAL_ZOOM"`
	ZoomFactor   float64       `yaml:"zoom_factor" env:"ZOOM_FACTOR"`
	ZoomDuration time.Duration `yaml:"zoom_duration" env:"ZOOM_DURATION"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	File   string `yaml:"file" env:"FILE"`
}

type ObserverConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Addr    string `yaml:"addr" env:"ADDR"`
	Buffer  int    `yaml:"buffer" env:"BUFFER"`
}

type StorageConfig struct {
	Snapshot string `yaml:"snapshot" env:"SNAPSHOT"`
	Scores   string `yaml:"scores" env:"SCORES"`
}

const (
	GravityStepped    = "stepped"
	GravityContinuous = "continuous"
	GravityConstant   = "constant"
)

func Default() *Config {
	ls := level.DefaultSettings()
	return &Config{
		Physics: PhysicsConfig{
			Hz:                 physics.DefaultHz,
			VelocityIterations: physics.DefaultVelocityIterations,
			PositionIterations: physics.DefaultPositionIterations,
			Gravity:            physics.DefaultGravity,
			BoundsMargin:       physics.DefaultBoundsMargin,
		},
		Level: LevelConfig{
			Name:                "first",
			Width:               ls.Width,
			Height:              ls.Height,
			WallThickness:       ls.WallThickness,
			TimeLimit:           ls.TimeLimit,
			SparkRadius:         ls.SparkRadius,
			SparkLifetime:       ls.SparkLifetime,
			SparkSpeedThreshold: ls.SparkSpeedThreshold,
		},
		Controls: ControlsConfig{
			Gravity:      GravityStepped,
			TurnDuration: time.Second,
			TurnInterval: 20 * time.Millisecond,
			TurnDelta:    0.05,
			MoveImpulse:  ls.MoveImpulse,
			MoveInterval: ls.MoveInterval,
			JumpImpulse:  ls.JumpImpulse,
			KeyPulse:     150 * time.Millisecond,
		},
		Graphics: GraphicsConfig{
			ScreenWidth:  ls.ScreenWidth,
			ScreenHeight: ls.ScreenHeight,
			InitialZoom:  ls.InitialZoom,
			ZoomFactor:   ls.ZoomFactor,
			ZoomDuration: ls.ZoomDuration,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Observer: ObserverConfig{
			Addr:   "127.0.0.1:8765",
			Buffer: 8,
		},
		Storage: StorageConfig{
			Snapshot: "data/snapshot.json.zst",
			Scores:   "data/scores.db",
		},
	}
}

// Load layers the YAML file at path (skipped when path is empty) and then
// GRAVITATION_* environment variables over the defaults, and validates the
// result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}
	check(c.Physics.Hz > 0, "physics.hz must be positive, got %d", c.Physics.Hz)
	check(c.Physics.VelocityIterations > 0, "physics.velocity_iterations must be positive")
	check(c.Physics.PositionIterations > 0, "physics.position_iterations must be positive")
	check(c.Physics.BoundsMargin >= 0, "physics.bounds_margin must not be negative")
	check(c.Level.Width > 0 && c.Level.Height > 0, "level size %gx%g must be positive", c.Level.Width, c.Level.Height)
	check(c.Level.WallThickness > 0, "level.wall_thickness must be positive")
	check(c.Level.TimeLimit >= 0, "level.time_limit must not be negative")
	check(c.Level.SparkRadius > 0, "level.spark_radius must be positive")
	check(c.Level.SparkLifetime > 0, "level.spark_lifetime must be positive")
	switch c.Controls.Gravity {
	case GravityStepped:
		check(c.Controls.TurnDuration > 0, "controls.turn_duration must be positive")
	case GravityContinuous:
		check(c.Controls.TurnInterval > 0, "controls.turn_interval must be positive")
	case GravityConstant:
	default:
		check(false, "controls.gravity %q is not one of stepped, continuous, constant", c.Controls.Gravity)
	}
	check(c.Controls.MoveInterval > 0, "controls.move_interval must be positive")
	check(c.Controls.KeyPulse > 0, "controls.key_pulse must be positive")
	check(c.Graphics.ScreenWidth > 0 && c.Graphics.ScreenHeight > 0, "graphics screen size must be positive")
	check(c.Graphics.ZoomFactor > 0, "graphics.zoom_factor must be positive")
	switch c.Logging.Format {
	case "console", "json", "text":
	default:
		check(false, "logging.format %q is not one of console, json, text", c.Logging.Format)
	}
	if c.Observer.Enabled {
		check(c.Observer.Addr != "", "observer.addr is required when the observer is enabled")
		check(c.Observer.Buffer > 0, "observer.buffer must be positive")
	}
	return errors.Join(errs...)
}

func (c *Config) TimeStep() time.Duration {
	return time.Second / time.Duration(c.Physics.Hz)
}

// LevelSettings maps the config onto the level's settings.
func (c *Config) LevelSettings() level.Settings {
	return level.Settings{
		Width:               c.Level.Width,
		Height:              c.Level.Height,
		Gravity:             c.Physics.Gravity,
		TimeStep:            c.TimeStep(),
		VelocityIterations:  c.Physics.VelocityIterations,
		PositionIterations:  c.Physics.PositionIterations,
		BoundsMargin:        c.Physics.BoundsMargin,
		WallThickness:       c.Level.WallThickness,
		SparkRadius:         c.Level.SparkRadius,
		SparkLifetime:       c.Level.SparkLifetime,
		SparkSpeedThreshold: c.Level.SparkSpeedThreshold,
		MoveImpulse:         c.Controls.MoveImpulse,
		MoveInterval:        c.Controls.MoveInterval,
		JumpImpulse:         c.Controls.JumpImpulse,
		ScreenWidth:         c.Graphics.ScreenWidth,
		ScreenHeight:        c.Graphics.ScreenHeight,
		InitialZoom:         c.Graphics.InitialZoom,
		ZoomFactor:          c.Graphics.ZoomFactor,
		ZoomDuration:        c.Graphics.ZoomDuration,
		TimeLimit:           c.Level.TimeLimit,
	}
}
