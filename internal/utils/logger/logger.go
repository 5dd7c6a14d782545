// Package logger provides a global logger for the application
package logger

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/zap"
)

var Logger *zap.Logger

func initLogger() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using process environment")
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = "prod"
	}

	var logLevel zerolog.Level
	switch environment {
	case "dev", "test":
		logLevel = zerolog.TraceLevel
	case "prod":
		logLevel = zerolog.InfoLevel
	default:
		logLevel = zerolog.InfoLevel
		log.Warn().Str("environment", environment).Msg("Unknown environment - defaulting to info level and above")
	}

	// LOG_LEVEL overrides whatever the environment implies.
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "trace":
		logLevel = zerolog.TraceLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "":
	default:
		log.Warn().Str("LOG_LEVEL", os.Getenv("LOG_LEVEL")).Msg("Unknown LOG_LEVEL - keeping environment default")
	}

	zerolog.SetGlobalLevel(logLevel)
	log.Info().Str("environment", environment).Stringer("level", logLevel).Msg("Logging configured")

	var err error
	if environment == "prod" {
		Logger, err = zap.NewProduction()
	} else {
		Logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build zap logger")
	}
}

// Init initializes the logger from the environment. It sets up the global
// zerolog logger with console output and builds the zap logger used by the
// computation pipelines.
// Example usage:
//
//	logger.Init() <- inside whichever main() function in your entrypoint
//
// Levels come from LOG_LEVEL (debug|trace|info|warn), falling back to
// ENVIRONMENT (dev/test -> trace, prod -> info).
func Init() {
	initLogger()
}

// Sugar returns a sugared logger for easier use
// TODO: replace with zerolog
func Sugar() *zap.SugaredLogger {
	return Logger.Sugar()
}
