package main

import (
	"io"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging routes the standard logger to stderr and, when a file is
// configured, to a rotated log file. The returned closer flushes the file.
func setupLogging(cfg logConfig, stderr io.Writer) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if cfg.File == "" {
		log.SetOutput(stderr)
		return nopCloser{}
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(stderr, fileWriter))
	return fileWriter
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
