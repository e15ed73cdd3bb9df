// internal/infra/whatsapp/logger.go
package whatsapp

import (
	"github.com/sirupsen/logrus"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// logrusLogger routes whatsmeow's logging into logrus.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogger adapts a logrus entry to whatsmeow's logger interface.
func NewLogger(entry *logrus.Entry) waLog.Logger {
	return logrusLogger{entry: entry}
}

func (l logrusLogger) Warnf(msg string, args ...interface{})  { l.entry.Warnf(msg, args...) }
func (l logrusLogger) Errorf(msg string, args ...interface{}) { l.entry.Errorf(msg, args...) }
func (l logrusLogger) Infof(msg string, args ...interface{})  { l.entry.Infof(msg, args...) }
func (l logrusLogger) Debugf(msg string, args ...interface{}) { l.entry.Debugf(msg, args...) }

func (l logrusLogger) Sub(module string) waLog.Logger {
	if parent, ok := l.entry.Data["module"].(string); ok && parent != "" {
		module = parent + "/" + module
	}
	return logrusLogger{entry: l.entry.WithField("module", module)}
}
