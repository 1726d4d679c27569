package changelog

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// fileHook copies every record to a second writer with its own formatter.
// This lets the console be colored while the log file stays plain text.
type fileHook struct {
	out       io.Writer
	formatter logrus.Formatter

	// logrus doesn't hold its lock while firing hooks.
	lock sync.Mutex
}

func newFileHook(out io.Writer, formatter logrus.Formatter) *fileHook {
	return &fileHook{out: out, formatter: formatter}
}

func (hook *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *fileHook) Fire(entry *logrus.Entry) error {
	line, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}

	hook.lock.Lock()
	defer hook.lock.Unlock()
	_, err = hook.out.Write(line)
	return err
}
