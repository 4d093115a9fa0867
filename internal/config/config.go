// Package config loads quickfind settings from config file, environment
// variables and built-in defaults, and owns global logger setup.
package config

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pseudoincorrect/quickfind/internal/search"
)

const (
	configBaseName   = "quickfind"
	configFolderPath = "."

	envPrefix = "QUICKFIND"

	maxResultsKey       = "search.max_results"
	maxFileSizeKey      = "search.max_file_size"
	maxDepthKey         = "search.max_depth"
	contextSizeKey      = "search.context_size"
	batchSizeKey        = "search.batch_size"
	initialDisplayKey   = "search.initial_display"
	displayIncrementKey = "search.display_increment"
	includeHiddenKey    = "search.include_hidden"
	caseSensitiveKey    = "search.case_sensitive"
	smartCaseKey        = "search.smart_case"
	wholeWordKey        = "search.whole_word"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".quickfind.log"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// Settings is everything the CLI needs to build a search session.
type Settings struct {
	Session search.Config
	Options search.Options
}

// Init registers defaults and reads the optional config file. A missing or
// unreadable file is not an error; defaults and environment still apply.
func Init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	def := search.DefaultConfig()
	viper.SetDefault(maxResultsKey, def.MaxResults)
	viper.SetDefault(maxFileSizeKey, def.MaxFileSize)
	viper.SetDefault(maxDepthKey, def.MaxDepth)
	viper.SetDefault(contextSizeKey, def.ContextSize)
	viper.SetDefault(batchSizeKey, def.BatchSize)
	viper.SetDefault(initialDisplayKey, def.InitialDisplay)
	viper.SetDefault(displayIncrementKey, def.DisplayIncrement)
	viper.SetDefault(includeHiddenKey, false)
	viper.SetDefault(caseSensitiveKey, false)
	viper.SetDefault(smartCaseKey, true)
	viper.SetDefault(wholeWordKey, false)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, "info")
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Debug("config file unreadable, using defaults", "err", err)
		}
	}
}

// Load materializes the resolved settings.
func Load() Settings {
	return Settings{
		Session: search.Config{
			MaxResults:       viper.GetInt(maxResultsKey),
			MaxFileSize:      viper.GetInt64(maxFileSizeKey),
			MaxDepth:         viper.GetInt(maxDepthKey),
			ContextSize:      viper.GetInt(contextSizeKey),
			BatchSize:        viper.GetInt(batchSizeKey),
			InitialDisplay:   viper.GetInt(initialDisplayKey),
			DisplayIncrement: viper.GetInt(displayIncrementKey),
			IncludeHidden:    viper.GetBool(includeHiddenKey),
		},
		Options: search.Options{
			CaseSensitive: viper.GetBool(caseSensitiveKey),
			SmartCase:     viper.GetBool(smartCaseKey),
			WholeWord:     viper.GetBool(wholeWordKey),
		},
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels work too (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// ConfigureLogger installs the global slog logger, writing to a rotated file
// so log output never interleaves with search results on stdout.
func ConfigureLogger(verbose bool) {
	logPath := viper.GetString(logFilenameKey)
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
