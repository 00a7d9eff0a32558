package server

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// opLog accumulates the human-readable log of one operation. Reads return
// everything written so far, so successive reads are prefix-monotonic.
type opLog struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *opLog) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *opLog) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

// opLogFormatter renders entries as "yy/mm/dd hh:mm:ss LEVEL component: message".
type opLogFormatter struct{}

func (opLogFormatter) Format(e *logrus.Entry) ([]byte, error) {
	component, _ := e.Data["component"].(string)
	if component == "" {
		component = "godb"
	}
	return []byte(fmt.Sprintf("%s %s %s: %s\n",
		e.Time.Format("06/01/02 15:04:05"), strings.ToUpper(e.Level.String()), component, e.Message)), nil
}

func newOpLogger(out *opLog) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(opLogFormatter{})
	return l
}
