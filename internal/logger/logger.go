package logger

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"motohub-api-server/config"
)

// New builds the process logger from config. Unknown levels fall back to info.
func New(cfg config.LogConfig) *log.Logger {
	return NewWithOutput(cfg, os.Stdout)
}

func NewWithOutput(cfg config.LogConfig, out io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(out)

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	return l
}
