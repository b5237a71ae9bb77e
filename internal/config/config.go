package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const FileName = "config.yaml"

type Config struct {
	// Dir holds the database, log file and config file.
	Dir string `yaml:"dir" env:"STORYVIEW_DIR" env-description:"data directory"`
	// User overrides the current user stored in the database.
	User string `yaml:"user" env:"STORYVIEW_USER" env-description:"current user id"`

	Playback struct {
		StoryDuration time.Duration `yaml:"story_duration" env:"STORYVIEW_STORY_DURATION" env-default:"5s" env-description:"how long each story plays"`
		FrameInterval time.Duration `yaml:"frame_interval" env:"STORYVIEW_FRAME_INTERVAL" env-default:"50ms" env-description:"progress bar redraw interval"`
	} `yaml:"playback"`

	Gestures struct {
		SwipeThreshold float64       `yaml:"swipe_threshold" env:"STORYVIEW_SWIPE_THRESHOLD" env-default:"50" env-description:"swipe distance in pixels"`
		TapSlop        float64       `yaml:"tap_slop" env:"STORYVIEW_TAP_SLOP" env-default:"10" env-description:"movement still counted as a tap"`
		LongPress      time.Duration `yaml:"long_press" env:"STORYVIEW_LONG_PRESS" env-default:"400ms" env-description:"press length that holds playback"`
		CellWidth      int           `yaml:"cell_width" env:"STORYVIEW_CELL_WIDTH" env-default:"10" env-description:"pixels per terminal column"`
		CellHeight     int           `yaml:"cell_height" env:"STORYVIEW_CELL_HEIGHT" env-default:"20" env-description:"pixels per terminal row"`
	} `yaml:"gestures"`

	Log struct {
		Level string `yaml:"level" env:"STORYVIEW_LOG_LEVEL" env-default:"info" env-description:"debug|info|warn|error"`
		// File is the log path; empty means <dir>/storyview.log, "off" disables logging.
		File string `yaml:"file" env:"STORYVIEW_LOG_FILE" env-description:"log file path or off"`
	} `yaml:"log"`

	Sweep struct {
		Every time.Duration `yaml:"every" env:"STORYVIEW_SWEEP_EVERY" env-default:"10m" env-description:"expired story cleanup interval"`
	} `yaml:"sweep"`
}

// DefaultDir is ~/.storyview.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".storyview"), nil
}

// Load reads path (if it exists) and then the environment. Environment
// variables win over the file; missing values take their defaults.
// An empty path reads <dir>/config.yaml, where dir comes from the
// environment or DefaultDir.
func Load(path string) (Config, error) {
	var cfg Config

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		dir := strings.TrimSpace(os.Getenv("STORYVIEW_DIR"))
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return cfg, err
			}
			dir = d
		}
		path = filepath.Join(dir, FileName)
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	case explicit:
		return cfg, fmt.Errorf("read config: %w", statErr)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("read env: %w", err)
		}
	}

	if cfg.Dir == "" {
		cfg.Dir = filepath.Dir(path)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Playback.StoryDuration <= 0 {
		errs = append(errs, errors.New("playback.story_duration must be positive"))
	}
	if c.Playback.FrameInterval <= 0 {
		errs = append(errs, errors.New("playback.frame_interval must be positive"))
	}
	if c.Gestures.SwipeThreshold <= 0 {
		errs = append(errs, errors.New("gestures.swipe_threshold must be positive"))
	}
	if c.Gestures.TapSlop < 0 || c.Gestures.TapSlop >= c.Gestures.SwipeThreshold {
		errs = append(errs, errors.New("gestures.tap_slop must be between 0 and swipe_threshold"))
	}
	if c.Gestures.CellWidth <= 0 || c.Gestures.CellHeight <= 0 {
		errs = append(errs, errors.New("gestures.cell_width and cell_height must be positive"))
	}
	if c.Gestures.LongPress <= 0 {
		errs = append(errs, errors.New("gestures.long_press must be positive"))
	}
	if c.Sweep.Every <= 0 {
		errs = append(errs, errors.New("sweep.every must be positive"))
	}
	return errors.Join(errs...)
}

// Usage describes every environment variable, for --help output.
func Usage() string {
	var cfg Config
	help, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return help
}
