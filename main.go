package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	app "github.com/rocketscienceinc/timetravel-tictactoe/internal"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/config"
)

var configPath = "./config.yml"

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "path to the yaml config file")
}

// main - is the entry point of the application. It initializes the configuration, logger, and runs the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	pflag.Parse()

	conf := config.MustLoad(configPath)
	logger := initLogger(conf)

	if err := app.RunApp(context.Background(), logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
