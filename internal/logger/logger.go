package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log глобальный логгер приложения.
var Log = logrus.New()

// Init настраивает уровень и формат логов.
// В development используется текстовый формат, иначе JSON.
func Init(level string, development bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
	Log.SetOutput(os.Stdout)

	if development {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		return
	}
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// WithComponent возвращает запись лога с полем component.
func WithComponent(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
