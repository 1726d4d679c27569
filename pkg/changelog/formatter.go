package changelog

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/buger/goterm"
	"github.com/sirupsen/logrus"
)

// DefaultTimestampFormat matches the timestamps of existing log files, so
// that records from different runs line up when the file is appended to.
const DefaultTimestampFormat = "2006-01-02 15:04:05.000"

// Formatter renders records as `<timestamp> | <SEVERITY> | <message>`.
// Any fields attached to the entry are appended as sorted key=value pairs.
type Formatter struct {
	TimestampFormat string

	// Colors wraps the severity in terminal color codes.
	Colors bool
}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = DefaultTimestampFormat
	}

	severity := strings.ToUpper(entry.Level.String())
	if f.Colors {
		severity = goterm.Color(severity, levelColor(entry.Level))
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s | %s | %s", entry.Time.Format(timestampFormat), severity, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelColor(level logrus.Level) int {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return goterm.RED
	case logrus.WarnLevel:
		return goterm.YELLOW
	case logrus.InfoLevel:
		return goterm.GREEN
	default:
		return goterm.BLUE
	}
}
