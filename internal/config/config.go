package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TTS      TTSConfig      `yaml:"tts"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`

	// ReadingCorrections is the global dictionary tier, shared by every
	// novel. Per-novel entries override these on conflict.
	ReadingCorrections map[string]string `yaml:"reading_corrections"`
}

type TTSConfig struct {
	Key   string `yaml:"key"`
	Model string `yaml:"model"`
	Voice string `yaml:"voice"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

type PipelineConfig struct {
	MaxChunkSize   int     `yaml:"max_chunk_size"`
	Workers        int     `yaml:"workers"`
	DiffThreshold  float64 `yaml:"diff_threshold"`
	MajorThreshold float64 `yaml:"major_threshold"`
	OutputDir      string  `yaml:"output_dir"`
}

const (
	defaultMaxChunkSize   = 4000
	defaultWorkers        = 4
	defaultDiffThreshold  = 0.95
	defaultMajorThreshold = 0.9
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Pipeline.MaxChunkSize <= 0 {
		c.Pipeline.MaxChunkSize = defaultMaxChunkSize
	}
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = defaultWorkers
	}
	if c.Pipeline.DiffThreshold <= 0 {
		c.Pipeline.DiffThreshold = defaultDiffThreshold
	}
	if c.Pipeline.MajorThreshold <= 0 {
		c.Pipeline.MajorThreshold = defaultMajorThreshold
	}
	if c.Pipeline.OutputDir == "" {
		c.Pipeline.OutputDir = "./mp3"
	}
	// environment overrides the file for API keys
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.TTS.Key == "" {
			c.TTS.Key = key
		}
		if c.LLM.Key == "" {
			c.LLM.Key = key
		}
	}
}
