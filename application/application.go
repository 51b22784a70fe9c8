// Package application 提供示例程序共用的启动流程：解析配置文件、初始化日志、构建编解码上下文。
package application

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	zlog "github.com/lk2023060901/danmu-garden-codec/pkg/log"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/typeinfo"
	zviper "github.com/lk2023060901/danmu-garden-codec/pkg/util/viper"
)

const (
	defaultConfigPath = "./config.yaml"

	envConfigPath = "CODEC_CONFIG_FILE_PATH"
	envLogEnable  = "CODEC_LOG_ENABLE"
	envLogLevel   = "CODEC_LOG_LEVEL"
	envLogStdout  = "CODEC_LOG_STDOUT"
	envLogFileDir = "CODEC_LOG_FILE_DIR"
	envLogFile    = "CODEC_LOG_FILE"
	envLogFormat  = "CODEC_LOG_FORMAT"
)

// Application is the runtime container shared by the codec tools.
// It owns configuration and the loggers built from it.
type Application struct {
	cfg     *zviper.Config
	loggers map[string]*zlog.MLogger
}

// New creates a new Application instance.
func New() *Application {
	return &Application{}
}

// Run parses os.Args and loads the configuration file using the following priority:
//  1. Default: ./config.yaml
//  2. Env: CODEC_CONFIG_FILE_PATH
//  3. CLI: --config <path> or --config=<path>
//
// A missing default file is not an error; an explicitly named one is.
func (a *Application) Run() error {
	return a.run(os.Args[1:])
}

func (a *Application) run(args []string) error {
	cfg, err := a.loadConfig(args)
	if err != nil {
		return err
	}
	a.cfg = cfg

	return a.initLogging()
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *zviper.Config {
	return a.cfg
}

// Logger returns a named logger created from configuration.
// If the name is unknown, it falls back to the global logger.
func (a *Application) Logger(name string) *zlog.MLogger {
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return &zlog.MLogger{Logger: zlog.L()}
}

// SerdeConfig returns the codec configuration, defaults overlaid with the loaded file.
func (a *Application) SerdeConfig() (serde.Config, error) {
	return serde.LoadConfig(a.cfg)
}

// Serde builds a codec context from configuration and registers modules in order.
// Both peers of a session must pass the same modules in the same order.
func (a *Application) Serde(modules ...*typeinfo.Module) (*serde.Context, error) {
	cfg, err := a.SerdeConfig()
	if err != nil {
		return nil, err
	}
	c, err := serde.NewFromConfig(cfg, modules...)
	if err != nil {
		return nil, err
	}
	if lg, ok := a.loggers["serde"]; ok {
		c.SetLogger(lg)
	}
	return c, nil
}

func (a *Application) loadConfig(args []string) (*zviper.Config, error) {
	configPath := defaultConfigPath
	explicit := false

	if envPath := strings.TrimSpace(os.Getenv(envConfigPath)); envPath != "" {
		configPath = envPath
		explicit = true
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return nil, errors.New("missing value after --config")
			}
			configPath = args[i+1]
			explicit = true
			i++
			continue
		}
		if val, ok := strings.CutPrefix(arg, "--config="); ok && val != "" {
			configPath = val
			explicit = true
		}
	}

	if !explicit {
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	}

	cfg := zviper.New()
	if err := cfg.LoadFile(configPath); err != nil {
		return nil, errors.Wrapf(err, "failed to load config file %q", configPath)
	}
	return cfg, nil
}

func (a *Application) initLogging() error {
	if err := a.initGlobalLoggerFromEnv(); err != nil {
		return err
	}
	return a.initModuleLoggersFromConfig()
}

// initGlobalLoggerFromEnv configures the process-wide logger from CODEC_LOG_* env vars.
//
//   - CODEC_LOG_ENABLE: "1"/"true" to enable outputs; otherwise logs are discarded.
//   - CODEC_LOG_LEVEL: log level (default "info").
//   - CODEC_LOG_STDOUT: whether to log to stdout (default false).
//   - CODEC_LOG_FILE_DIR: log directory.
//   - CODEC_LOG_FILE: log file name (empty means no file).
//   - CODEC_LOG_FORMAT: "text" or "json" (default "text").
func (a *Application) initGlobalLoggerFromEnv() error {
	cfg := &zlog.Config{
		Level:  getenvDefault(envLogLevel, "info"),
		Format: getenvDefault(envLogFormat, "text"),
		Stdout: getenvBool(envLogStdout, false),
		File: zlog.FileLogConfig{
			RootPath: getenvDefault(envLogFileDir, ""),
			Filename: getenvDefault(envLogFile, ""),
		},
	}

	if !getenvBool(envLogEnable, false) {
		cfg.Stdout = false
		cfg.File.Filename = ""
	}

	logger, props, err := zlog.InitLogger(cfg)
	if err != nil {
		return errors.Wrap(err, "init global logger from env")
	}
	zlog.ReplaceGlobals(logger, props)
	return nil
}

// initModuleLoggersFromConfig creates named loggers from the "logging" section.
//
//	logging:
//	  serde:
//	    level: debug
//	    stdout: true
//	    file:
//	      rootpath: ./logs
//	      filename: serde.log
func (a *Application) initModuleLoggersFromConfig() error {
	if a.cfg == nil {
		return nil
	}

	raw := make(map[string]zlog.Config)
	if err := a.cfg.UnmarshalKey("logging", &raw); err != nil {
		return errors.Wrap(err, "unmarshal logging section")
	}
	if len(raw) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(raw))
	for name, lc := range raw {
		logger, _, err := zlog.InitLogger(&lc)
		if err != nil {
			return errors.Wrapf(err, "init module logger %q", name)
		}
		a.loggers[name] = &zlog.MLogger{Logger: logger.With(zlog.FieldModule(name))}
	}
	return nil
}

func getenvDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getenvBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
