// Package logging configures the shared logrus instance used across
// the tool: a compact single-line format carrying the job ID, with
// optional rotating file output.
package logging

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	setupOnce sync.Once
	writerMu  sync.Mutex
	logWriter *lumberjack.Logger
)

// Formatter renders one log entry per line.
// Format: [2026-08-29 20:14:04] [info] | a1b2c3d4 | processed output.gcode
type Formatter struct{}

// fieldOrder defines the display order for common log fields.
var fieldOrder = []string{"script", "file", "output", "buffers", "bytes", "error"}

// Format renders a single log entry.
func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	var buffer *bytes.Buffer
	if entry.Buffer != nil {
		buffer = entry.Buffer
	} else {
		buffer = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	message := strings.TrimRight(entry.Message, "\r\n")

	jobID := "--------"
	if id, ok := entry.Data["job_id"].(string); ok && id != "" {
		jobID = id
	}

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}

	var fieldsStr string
	if len(entry.Data) > 0 {
		var fields []string
		for _, k := range fieldOrder {
			if v, ok := entry.Data[k]; ok {
				fields = append(fields, fmt.Sprintf("%s=%v", k, v))
			}
		}
		if len(fields) > 0 {
			fieldsStr = " " + strings.Join(fields, " ")
		}
	}

	fmt.Fprintf(buffer, "[%s] [%-5s] | %s | %s%s\n", timestamp, level, jobID, message, fieldsStr)
	return buffer.Bytes(), nil
}

// Setup configures the global logger. It is safe to call multiple
// times; formatter installation happens only once.
func Setup(level string) {
	setupOnce.Do(func() {
		log.SetOutput(os.Stderr)
		log.SetFormatter(&Formatter{})
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
}

// ConfigureFileOutput switches log output to a rotating file, or back
// to stderr when path is empty.
func ConfigureFileOutput(path string, maxSizeMB int) error {
	writerMu.Lock()
	defer writerMu.Unlock()

	if path == "" {
		if logWriter != nil {
			_ = logWriter.Close()
			logWriter = nil
		}
		log.SetOutput(os.Stderr)
		return nil
	}

	if logWriter != nil {
		_ = logWriter.Close()
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	logWriter = &lumberjack.Logger{
		Filename: path,
		MaxSize:  maxSizeMB,
	}
	log.SetOutput(logWriter)
	return nil
}

// Close flushes and closes the rotating file writer if one is active.
func Close() {
	writerMu.Lock()
	defer writerMu.Unlock()
	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}
	log.SetOutput(os.Stderr)
}
