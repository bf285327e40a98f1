package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

type Config struct {
	Server     Server     `yaml:"server"`
	Classifier Classifier `yaml:"classifier"`
	Media      Media      `yaml:"media"`
	Auth       Auth       `yaml:"auth"`
}

type Server struct {
	Bind          string `yaml:"bind"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	// Timezone decides where "today" starts for the upcoming workshop listing.
	Timezone string `yaml:"timezone"`
}

type Classifier struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Media struct {
	Endpoint     string `yaml:"endpoint"`
	CloudName    string `yaml:"cloudName"`
	UploadPreset string `yaml:"uploadPreset"`
}

type Auth struct {
	Secret   string        `yaml:"secret"`
	Audience string        `yaml:"audience"`
	RoleTTL  time.Duration `yaml:"roleTTL"`
}

func Default() Config {
	return Config{
		Server: Server{
			Bind:     ":8000",
			Timezone: "Asia/Kolkata",
		},
		Classifier: Classifier{
			Endpoint: "https://generativelanguage.googleapis.com",
			Model:    "gemini-1.5-flash",
			Timeout:  30 * time.Second,
		},
		Media: Media{
			Endpoint: "https://api.cloudinary.com",
		},
		Auth: Auth{
			Audience: "gaushala",
			RoleTTL:  10 * time.Minute,
		},
	}
}

// Load decodes the yaml file at path over the defaults.
func Load(path string) (Config, error) {
	config := Default()

	file, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "open config")
	}
	defer file.Close()

	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}

	return config, nil
}

func (c Config) Location() (*time.Location, error) {
	if c.Server.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Server.Timezone)
}
