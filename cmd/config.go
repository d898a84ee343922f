package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "mockcheck"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	moduleFlagName   = "module"
	calleeFlagName   = "callee"
	memberFlagName   = "member"
	accessorFlagName = "accessor"
	policyFlagName   = "policy"
	extFlagName      = "ext"
	excludeFlagName  = "exclude"
	parallelFlagName = "parallel"
	formatFlagName   = "format"
	logFileFlagName  = "log-file"
	logLevelFlagName = "log-level"
	verboseFlagName  = "verbose"
	strictFlagName   = "strict"
	dryRunFlagName   = "dry-run"
	anchorFlagName   = "anchor"
	stubFlagName     = "stub"

	rootConfigKey       = "root"
	moduleConfigKey     = "target.module"
	calleesConfigKey    = "target.callees"
	membersConfigKey    = "target.members"
	accessorConfigKey   = "target.accessor"
	policyConfigKey     = "scan.policy"
	extensionsConfigKey = "scan.extensions"
	parallelConfigKey   = "scan.parallel"
	strictConfigKey     = "scan.strict"
	excludeConfigKey    = "paths.exclude"
	formatConfigKey     = "output.format"
	anchorConfigKey     = "fix.anchor"
	stubConfigKey       = "fix.stub"

	defaultRoot     = "tests"
	defaultModule   = "@src/renderer/campaign/CampaignManager"
	defaultAccessor = "getInstance"
	defaultPolicy   = "scoped"
	defaultParallel = 4
	defaultStrict   = false
	defaultFormat   = "text"
	defaultAnchor   = "getState"
	defaultStub     = "vi.fn()"

	envPrefix = "MOCKCHECK"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".mockcheck.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var (
	defaultCallees    = []string{"vi.mock", "jest.mock"}
	defaultMembers    = []string{"addChangeListener"}
	defaultExtensions = []string{".ts", ".tsx"}
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(rootConfigKey, defaultRoot)
	viper.SetDefault(moduleConfigKey, defaultModule)
	viper.SetDefault(calleesConfigKey, defaultCallees)
	viper.SetDefault(membersConfigKey, defaultMembers)
	viper.SetDefault(accessorConfigKey, defaultAccessor)
	viper.SetDefault(policyConfigKey, defaultPolicy)
	viper.SetDefault(extensionsConfigKey, defaultExtensions)
	viper.SetDefault(parallelConfigKey, defaultParallel)
	viper.SetDefault(strictConfigKey, defaultStrict)
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(formatConfigKey, defaultFormat)
	viper.SetDefault(anchorConfigKey, defaultAnchor)
	viper.SetDefault(stubConfigKey, defaultStub)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := readConfig(); err != nil {
		slog.Warn("Failed to read config file", "file", configFileName, "error", err)
	}
}

// readConfig loads mockcheck.yaml. A missing file is not an error.
func readConfig() error {
	err := viper.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// configStringSlice reads a list key. Env values arrive as a single string,
// so every element is also split on commas.
func configStringSlice(key string) []string {
	var out []string

	for _, value := range viper.GetStringSlice(key) {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}

	return out
}

// parseSlogLevel accepts slog level names with an optional offset
// ("warn", "DEBUG-2") or a bare number.
func parseSlogLevel(value string, fallback slog.Level) slog.Level {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err == nil {
		return level
	}

	if n, err := strconv.Atoi(value); err == nil {
		return slog.Level(n)
	}

	return fallback
}

// logLevelFromConfig resolves log.level; --verbose forces debug.
func logLevelFromConfig() slog.Level {
	if viper.GetBool(logVerboseKey) {
		return slog.LevelDebug
	}

	return parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
}

// configureLogger points the default slog logger at a rotating log file.
func configureLogger(logPath string, level slog.Level) {
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	globalLogger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
	slog.SetDefault(globalLogger)
}
