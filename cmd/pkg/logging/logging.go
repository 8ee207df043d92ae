package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger - обёртка над logrus.Entry. Все сервисы получают *Logger в конструкторе
// и создают scoped-логгеры через WithField/WithFields.
type Logger struct {
	*logrus.Entry
}

var (
	entry *logrus.Entry
	once  sync.Once
)

// GetLogger возвращает процессный логгер (создаётся один раз).
func GetLogger() *Logger {
	once.Do(func() {
		l := logrus.New()
		l.SetReportCaller(true)
		l.Formatter = &logrus.TextFormatter{
			CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
				filename := path.Base(frame.File)
				return fmt.Sprintf("%s()", frame.Function), fmt.Sprintf("%s:%d", filename, frame.Line)
			},
			DisableColors: false,
			FullTimestamp: true,
		}
		l.SetOutput(os.Stdout)
		l.SetLevel(levelFromEnv())
		entry = logrus.NewEntry(l)
	})
	return &Logger{entry}
}

// Wrap оборачивает готовый logrus.Logger. Используется в тестах
// вместе с github.com/sirupsen/logrus/hooks/test.
func Wrap(l *logrus.Logger) *Logger {
	return &Logger{logrus.NewEntry(l)}
}

// NewDiscardLogger возвращает логгер, который ничего не пишет.
func NewDiscardLogger() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return Wrap(l)
}

func levelFromEnv() logrus.Level {
	lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
