package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerOptions struct {
	Key  string
	Data interface{}
}

var Logger *zap.Logger

// Used to start the logger before any other service so start up logs are not lost.
func InitializeLogger() {
	if Logger != nil {
		return
	}
	var err error
	if os.Getenv("ENV") == "prod" {
		Logger, err = zap.NewProduction()
	} else {
		Logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
}

func zapFields(payload []LoggerOptions) []zapcore.Field {
	if Logger == nil {
		InitializeLogger()
	}
	fields := []zapcore.Field{}
	for _, data := range payload {
		fields = append(fields, zap.Any(data.Key, data.Data))
	}
	return fields
}

// This logs info level messages.
func Info(msg string, payload ...LoggerOptions) {
	Logger.Info(msg, zapFields(payload)...)
}

// This logs error messages.
// describe the incident in msg and pass the error through logger options
// with key error
func Error(msg string, payload ...LoggerOptions) {
	Logger.Error(msg, zapFields(payload)...)
}

// This logs warning messages.
func Warning(msg string, payload ...LoggerOptions) {
	Logger.Warn(msg, zapFields(payload)...)
}
