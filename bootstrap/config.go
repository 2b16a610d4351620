package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"forensics/config"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds the zap logger. Production logs JSON; every other
// environment gets colored console output. An unknown level falls back to info.
func InitLogger(env, level string) (*zap.Logger, *zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil || level == "" {
		lvl = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	if strings.EqualFold(env, config.EnvProduction) {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder // Colored levels
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), lvl)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger, logger.Sugar(), nil
}

// InitConfig loads the application configuration and reports risky settings.
func InitConfig(sugar *zap.SugaredLogger) (*config.Config, error) {
	v := viper.New()
	cfg, err := config.Load(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load config: %v\n", err)
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if v.ConfigFileUsed() == "" {
		sugar.Info("No config file found, using defaults and env vars")
	}

	for _, w := range cfg.Warnings() {
		sugar.Warn(w)
	}

	sugar.Infow("Config loaded",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"storage_driver", cfg.Storage.Driver,
		"upload_path", cfg.Upload.Path,
		"redis_enabled", cfg.Redis.Enabled,
		"ai_analysis", cfg.Features.AIAnalysis,
		"auto_classification", cfg.Features.AutoClassification,
		"threat_intelligence", cfg.Features.ThreatIntelligence)

	return cfg, nil
}
