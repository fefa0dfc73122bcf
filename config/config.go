// Package config loads the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// DataDir is the base for every relative path below.
	DataDir   string    `yaml:"data_dir"`
	Store     string    `yaml:"store"`
	Resources Resources `yaml:"resources"`
	Segmenter string    `yaml:"segmenter"`
	MaxWindow int       `yaml:"max_window"`
	CacheSize int       `yaml:"cache_size"`
	Log       Log       `yaml:"log"`
}

type Resources struct {
	WordList    string `yaml:"word_list"`
	Frequencies string `yaml:"frequencies"`
	Furigana    string `yaml:"furigana"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

func Default() Config {
	dataDir := "."
	if dir, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(dir, "popup_dictionary")
	}
	return Config{
		DataDir: dataDir,
		Store:   filepath.Join("db", "lexicon.db"),
		Resources: Resources{
			WordList:    filepath.Join("dicts", "jmdict-simplified.json"),
			Frequencies: filepath.Join("dicts", "leeds-corpus-frequency.txt"),
			Furigana:    filepath.Join("dicts", "jmdict-furigana.json"),
		},
		Segmenter: "ipa",
		MaxWindow: 37,
		CacheSize: 4096,
		Log: Log{
			Level:  "info",
			Format: "text",
			Dir:    "logs",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.MaxWindow < 0 {
		return Config{}, fmt.Errorf("config %s: max_window must not be negative", path)
	}
	return cfg, nil
}

// Path resolves p against DataDir unless it is absolute.
func (c Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
