// Package main provides the RadioDJ skill service entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"radiodj/internal/bus"
	"radiodj/internal/core"
	httpserver "radiodj/internal/http"
	"radiodj/internal/pulse"
	"radiodj/internal/radiobrowser"
	"radiodj/internal/store"
)

const (
	clickStoreCapacity     = 10000
	clickStoreFPRate       = 0.001
	gaugeRefreshInterval   = time.Minute
	directoryDefaultUA     = "radiodj/1.0"
	directoryDefaultLimit  = core.DefaultSearchLimit
	directoryTimeoutSecs   = 10
	pulseTimeoutSecsLimit  = 60
	defaultPulseTimeoutSec = 1
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "radiodj",
	Short: "RadioDJ - internet radio skill service",
	Long: `RadioDJ resolves spoken radio requests against the Radio Browser station
directory and plays the matched stream through the host assistant's audio
service, with best-effort volume control of the local media player.`,
	RunE: runRadioDJ,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, console)")
	rootCmd.PersistentFlags().String("directory-base-url", "", "station directory base URL (empty discovers a server)")
	rootCmd.PersistentFlags().String("directory-user-agent", directoryDefaultUA, "User-Agent sent to the station directory")
	rootCmd.PersistentFlags().Int("directory-limit", directoryDefaultLimit, "maximum search results per directory query")
	rootCmd.PersistentFlags().String("bus-host", "127.0.0.1", "host assistant message bus host")
	rootCmd.PersistentFlags().Int("bus-port", 8181, "host assistant message bus port")
	rootCmd.PersistentFlags().String("bus-path", "/core", "host assistant message bus path")
	rootCmd.PersistentFlags().String("pulse-socket-path", "", "PulseAudio CLI socket path (empty probes defaults)")
	rootCmd.PersistentFlags().Int("pulse-timeout", defaultPulseTimeoutSec, "PulseAudio socket timeout in seconds")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	rootCmd.PersistentFlags().String("player-app-name", core.DefaultPlayerAppName, "sink input application name to adjust")
	rootCmd.PersistentFlags().Float64("player-volume", core.DefaultPlayerVolume, "volume fraction applied to the player sink")
	rootCmd.PersistentFlags().Bool("click-tracking", true, "report station clicks to the directory")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix("RADIODJ")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Directory.BaseURL = viper.GetString("directory-base-url")
	cfg.Directory.UserAgent = viper.GetString("directory-user-agent")
	if cfg.Directory.UserAgent == "" {
		cfg.Directory.UserAgent = directoryDefaultUA
	}
	cfg.Directory.Limit = viper.GetInt("directory-limit")
	if cfg.Directory.Limit <= 0 {
		cfg.Directory.Limit = directoryDefaultLimit
	}
	cfg.Directory.Timeout = directoryTimeoutSecs * time.Second

	cfg.Bus.Host = viper.GetString("bus-host")
	cfg.Bus.Port = viper.GetInt("bus-port")
	cfg.Bus.Path = viper.GetString("bus-path")

	cfg.Pulse.SocketPath = viper.GetString("pulse-socket-path")
	timeoutSecs := viper.GetInt("pulse-timeout")
	if timeoutSecs <= 0 || timeoutSecs > pulseTimeoutSecsLimit {
		timeoutSecs = defaultPulseTimeoutSec
	}
	cfg.Pulse.Timeout = time.Duration(timeoutSecs) * time.Second

	cfg.Server.Host = viper.GetString("server-host")
	cfg.Server.Port = viper.GetInt("server-port")

	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	cfg.Skill.PlayerAppName = viper.GetString("player-app-name")
	if cfg.Skill.PlayerAppName == "" {
		cfg.Skill.PlayerAppName = core.DefaultPlayerAppName
	}
	cfg.Skill.PlayerVolume = viper.GetFloat64("player-volume")
	if cfg.Skill.PlayerVolume <= 0 || cfg.Skill.PlayerVolume > 1 {
		cfg.Skill.PlayerVolume = core.DefaultPlayerVolume
	}
	cfg.Skill.ClickTracking = viper.GetBool("click-tracking")

	return cfg
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if strings.ToLower(format) == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runRadioDJ(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting RadioDJ",
		zap.String("version", "1.0.0"),
		zap.String("bus", fmt.Sprintf("%s:%d", config.Bus.Host, config.Bus.Port)),
		zap.String("player", config.Skill.PlayerAppName))

	clicks := store.NewClickStore(clickStoreCapacity, clickStoreFPRate)

	directory := radiobrowser.NewClient(&config.Directory, logger.Named("radiobrowser"))

	volume := pulse.NewClient(&config.Pulse, logger.Named("pulse"))

	busClient := bus.NewClient(&config.Bus, logger.Named("bus"))
	if err := busClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to message bus: %w", err)
	}

	audio := bus.NewAudioService(busClient, logger.Named("audio"))

	httpServer := httpserver.NewServer(&config.Server, logger.Named("http"))

	resolver := core.NewResolver(directory, logger.Named("resolver"), httpServer)

	skill := core.NewSkill(
		config,
		resolver,
		directory,
		audio,
		volume,
		clicks,
		httpServer,
		logger.Named("skill"),
	)

	bus.RegisterSkill(busClient, skill, logger.Named("commonplay"))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return busClient.Listen(gCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(gaugeRefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				httpServer.SetClickedStations(clicks.Size())
			}
		}
	})

	logger.Info("RadioDJ started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)),
		zap.String("bus_url", busClient.URL()))

	if err := g.Wait(); err != nil {
		logger.Error("RadioDJ stopped with error", zap.Error(err))
		return err
	}

	logger.Info("RadioDJ stopped gracefully")
	return nil
}
