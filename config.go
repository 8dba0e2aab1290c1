package portal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// Config is the startup configuration. Fields missing from a YAML file keep
// their DefaultConfig values.
type Config struct {
	Window       WindowConfig `yaml:"window"`
	ModelPath    string       `yaml:"model"`
	TexturePath  string       `yaml:"texture"`
	DecoderPath  string       `yaml:"decoder"`
	Debug        bool         `yaml:"debug"`
	FireflyCount int          `yaml:"fireflies"`
	Seed         int64        `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Portal",
		},
		ModelPath:    "assets/bakedPortal.glb",
		TexturePath:  "assets/bakedCarl.jpg",
		DecoderPath:  DefaultDecoderPath,
		FireflyCount: DefaultFireflyCount,
		Seed:         0,
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.FireflyCount < 0 {
		return fmt.Errorf("firefly count %d must not be negative", c.FireflyCount)
	}
	if c.ModelPath == "" {
		return fmt.Errorf("model path is empty")
	}
	return nil
}
