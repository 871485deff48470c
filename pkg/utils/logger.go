package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//Logger is the process wide logger. It discards everything until InitLogger is called.
var Logger = zap.NewNop()

//InitLogger builds Logger for given mode: JSON production output for "release", colored development output otherwise
func InitLogger(mode string) error {
	var config zap.Config

	if mode == ReleaseMode {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}

	Logger = logger
	return nil
}

func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
