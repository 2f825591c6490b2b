// Package logging adapts structured loggers to fel.Logger.
package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/xboot/xfel-go/fel"
)

type logrusLogger struct {
	entry *logrus.Entry
}

// Logrus returns a fel.Logger writing to l. Key/value pairs become fields.
func Logrus(l logrus.FieldLogger) fel.Logger {
	return &logrusLogger{entry: l.WithFields(logrus.Fields{})}
}

func (l *logrusLogger) Debug(msg string, kv ...interface{}) { l.with(kv).Debug(msg) }
func (l *logrusLogger) Info(msg string, kv ...interface{})  { l.with(kv).Info(msg) }
func (l *logrusLogger) Error(msg string, kv ...interface{}) { l.with(kv).Error(msg) }

func (l *logrusLogger) with(kv []interface{}) *logrus.Entry {
	if len(kv) == 0 {
		return l.entry
	}
	return l.entry.WithFields(fields(kv))
}

// fields pairs up kv. A trailing key without value is kept under "!BADKEY".
func fields(kv []interface{}) logrus.Fields {
	f := make(logrus.Fields, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 == len(kv) {
			f["!BADKEY"] = key
			break
		}
		f[key] = kv[i+1]
	}
	return f
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// Zap returns a fel.Logger writing to s.
func Zap(s *zap.SugaredLogger) fel.Logger {
	return &zapLogger{s: s}
}

func (l *zapLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l *zapLogger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l *zapLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
