package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/header"
	"github.com/matzehuels/imageoi/pkg/model"
)

// Config holds user defaults read from the TOML config file:
//
//	[image]
//	naxis1 = 128
//	pixelsize = 0.2
//	ctype = ["RA---SIN", "DEC--SIN"]
//
//	[model]
//	type = "gaussian"
//	width = 3.0
//
//	[params]
//	MAXITER = 500
//	RGL_NAME = "mem_prior"
type Config struct {
	Image  ImageConfig    `toml:"image"`
	Model  model.Options  `toml:"model"`
	Params map[string]any `toml:"params"`

	path       string
	paramOrder []string
}

// ImageConfig holds the default image geometry.
type ImageConfig struct {
	Naxis1    int      `toml:"naxis1"`
	PixelSize float64  `toml:"pixelsize"`
	CType     []string `toml:"ctype"`
}

// loadConfig reads the config file at path, or the default config file
// when path is empty. A missing default file yields an empty config; a
// missing explicit file is an error.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, configFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
	}
	return parseConfig(path, string(data))
}

func parseConfig(path, data string) (*Config, error) {
	cfg := &Config{path: path}
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	for _, k := range md.Keys() {
		if len(k) == 2 && k[0] == "params" {
			cfg.paramOrder = append(cfg.paramOrder, k[1])
		}
	}
	for key, v := range cfg.Params {
		switch v := v.(type) {
		case int64:
			cfg.Params[key] = int(v)
		case string, bool, float64:
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"config %s: parameter %s has unsupported value %v", path, key, v)
		}
	}

	if cfg.Model.Type != "" || cfg.Model.Width != 0 || cfg.Model.LDAlpha != nil {
		opts := cfg.Model
		if err := opts.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
		}
	}
	return cfg, nil
}

// ParamCards returns the configured parameters in file order.
func (c *Config) ParamCards() []header.Card {
	cards := make([]header.Card, 0, len(c.paramOrder))
	for _, key := range c.paramOrder {
		cards = append(cards, header.Card{Key: key, Value: c.Params[key]})
	}
	return cards
}
