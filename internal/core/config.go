package core

import (
	"time"
)

const (
	// DefaultSearchLimit caps directory search result pages
	DefaultSearchLimit = 10
	// DefaultPlayerVolume is the fraction applied to the media player sink
	DefaultPlayerVolume = 0.6
	// DefaultPlayerAppName is the application.name matched against sink inputs
	DefaultPlayerAppName = "VLC"
)

type Config struct {
	Directory DirectoryConfig
	Bus       BusConfig
	Pulse     PulseConfig
	Server    ServerConfig
	Log       LogConfig
	Skill     SkillConfig
}

type DirectoryConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Limit     int
}

type BusConfig struct {
	Host string
	Port int
	Path string
}

type PulseConfig struct {
	SocketPath string
	Timeout    time.Duration
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type SkillConfig struct {
	PlayerAppName string
	PlayerVolume  float64
	ClickTracking bool
}

func DefaultConfig() *Config {
	return &Config{
		Directory: DirectoryConfig{
			BaseURL:   "",
			UserAgent: "radiodj/1.0",
			Timeout:   10 * time.Second,
			Limit:     DefaultSearchLimit,
		},
		Bus: BusConfig{
			Host: "127.0.0.1",
			Port: 8181,
			Path: "/core",
		},
		Pulse: PulseConfig{
			SocketPath: "",
			Timeout:    time.Second,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Skill: SkillConfig{
			PlayerAppName: DefaultPlayerAppName,
			PlayerVolume:  DefaultPlayerVolume,
			ClickTracking: true,
		},
	}
}
