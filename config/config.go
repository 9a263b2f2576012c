// Package config holds the viewer configuration: where the map starts,
// how high the drone floats above the terrain and where its label is drawn.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pdok/spatialid/logger"
)

type Config struct {
	Map     MapConfig     `yaml:"map"`
	Sync    SyncConfig    `yaml:"sync"`
	Overlay OverlayConfig `yaml:"overlay"`
	Logging LoggingConfig `yaml:"logging"`
}

// MapConfig is the initial camera of the map.
type MapConfig struct {
	Center   LngLat  `yaml:"center"`
	Zoom     float64 `yaml:"zoom" default:"18.31" validate:"gte=0,lte=24"`
	Pitch    float64 `yaml:"pitch" default:"67" validate:"gte=0,ltefield=MaxPitch"`
	MaxPitch float64 `yaml:"max_pitch" default:"85" validate:"gte=0,lte=85"`
	Bearing  float64 `yaml:"bearing" default:"-137.1" validate:"gte=-180,lte=180"`
}

type LngLat struct {
	Lng float64 `yaml:"lng" default:"139.114998" validate:"gte=-180,lte=180"`
	Lat float64 `yaml:"lat" default:"36.08429" validate:"gt=-90,lt=90"`
}

// SyncConfig tunes the camera sync.
type SyncConfig struct {
	// height of the model above the terrain, in meters
	ModelHeight float64 `yaml:"model_height" default:"30"`
	// height of the label above the model, in meters
	LabelOffset float64 `yaml:"label_offset" default:"10"`
	// wait after the map reports ready, for renderers that keep loading tiles after that
	SettleDelay time.Duration `yaml:"settle_delay" default:"0s" validate:"gte=0"`
}

type OverlayConfig struct {
	ModelURL string    `yaml:"model_url" default:"data/dji_tello_1.glb" validate:"required"`
	Tilesets []Tileset `yaml:"tilesets" validate:"dive"`
}

// Tileset is a static 3D tiles layer drawn underneath the model.
type Tileset struct {
	ID      string  `yaml:"id" validate:"required"`
	URL     string  `yaml:"url" validate:"required,url"`
	Opacity float64 `yaml:"opacity" default:"1" validate:"gte=0,lte=1"`
}

type LoggingConfig struct {
	Level string            `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	File  logger.FileConfig `yaml:"file"`
}

// SetDefaults is called by defaults.Set after the tag defaults are applied.
func (o *OverlayConfig) SetDefaults() {
	if o.Tilesets == nil {
		o.Tilesets = []Tileset{
			{ID: "tile3dlayer-1", URL: "https://shiworks.xsrv.jp/3dtiles/shizuoka-pc/sunen-substation/tileset.json", Opacity: 1},
			{ID: "tile3dlayer-2", URL: "https://shiworks2.xsrv.jp/3dtiles/pref-saitama/river-pointcloud/chichibu-railway-spot/tileset.json", Opacity: 1},
		}
	}
}

// Default returns the configuration with all defaults applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("applying config defaults: %w", err)
	}
	return cfg, nil
}

// Load reads a YAML file over the defaults and validates the result.
// An empty path gives the (validated) defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err = loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	// tilesets from the file replace the default ones, so their own defaults are still missing
	for i := range cfg.Overlay.Tilesets {
		if err = defaults.Set(&cfg.Overlay.Tilesets[i]); err != nil {
			return err
		}
	}
	return nil
}

func (cfg *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
