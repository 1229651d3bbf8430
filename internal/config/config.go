package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Game struct {
		// Mode is one of flat, decay, force.
		Mode string `yaml:"mode"`
		// StartSecret gates the start action; empty means anyone may start.
		StartSecret      string   `yaml:"start_secret"`
		Questions        int      `yaml:"questions"`
		QuestionDuration string   `yaml:"question_duration"`
		Cooldown         string   `yaml:"cooldown"`
		Tick             string   `yaml:"tick"`
		BasePoints       int      `yaml:"base_points"`
		ForceDelta       int      `yaml:"force_delta"`
		MaxForce         int      `yaml:"max_force"`
		Groups           int      `yaml:"groups"`
		Operators        []string `yaml:"operators"`
		MinOperand       int      `yaml:"min_operand"`
		MaxOperand       int      `yaml:"max_operand"`
		MaxDivisor       int      `yaml:"max_divisor"`
		MaxQuotient      int      `yaml:"max_quotient"`
		// Bank names a question bank to draw from; empty means generate.
		Bank        string `yaml:"bank"`
		IdleTimeout string `yaml:"idle_timeout"`
	} `yaml:"game"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Bank struct {
		TTL string `yaml:"ttl"`
	} `yaml:"bank"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
