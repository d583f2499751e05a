package logger

import "github.com/robfig/cron/v3"

type cronLogger struct {
	logger *Logger
}

// Cron adapts the logger for robfig/cron. Its routine scheduling chatter goes
// to debug, job errors and recovered panics to error.
func (l *Logger) Cron() cron.Logger {
	return &cronLogger{logger: l}
}

func (c *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (c *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
