// Copyright 2021-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package genericconf

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var globalFileLogger = fileLogger{}

// fileLogger writes log records to a rotated file through a bounded buffer.
// Records arriving while the buffer is full are dropped so a slow disk never stalls the caller.
type fileLogger struct {
	writerMutex sync.Mutex
	writer      *lumberjack.Logger
	cancel      context.CancelFunc

	// each pending write holds a slot in startPing until its donePing is consumed
	startPing chan struct{}
	donePing  chan struct{}
}

func (l *fileLogger) Write(p []byte) (n int, err error) {
	select {
	case l.startPing <- struct{}{}:
		l.writerMutex.Lock()
		if l.writer != nil {
			_, _ = l.writer.Write(p)
		}
		l.writerMutex.Unlock()
		l.donePing <- struct{}{}
	default:
	}
	return len(p), nil
}

// open is not threadsafe
func (l *fileLogger) open(config *FileLoggingConfig, filename string) io.Writer {
	_ = l.close()
	l.writer = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		LocalTime:  config.LocalTime,
		Compress:   config.Compress,
	}
	l.startPing = make(chan struct{}, config.BufSize)
	l.donePing = make(chan struct{}, config.BufSize)
	startPing, donePing := l.startPing, l.donePing
	var ctx context.Context
	ctx, l.cancel = context.WithCancel(context.Background())
	go func() {
		for {
			select {
			case <-startPing:
				<-donePing
			case <-ctx.Done():
				return
			}
		}
	}()
	return l
}

// close is not threadsafe
func (l *fileLogger) close() error {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.writerMutex.Lock()
	defer l.writerMutex.Unlock()
	if l.writer != nil {
		if err := l.writer.Close(); err != nil {
			return err
		}
		l.writer = nil
	}
	return nil
}

// InitLog replaces the default logger. It is not threadsafe.
func InitLog(logType string, logLevel string, fileLoggingConfig *FileLoggingConfig, pathResolver func(string) string) error {
	if err := globalFileLogger.close(); err != nil {
		return fmt.Errorf("failed to close file writer: %w", err)
	}
	var output io.Writer = os.Stderr
	if fileLoggingConfig.Enable {
		output = io.MultiWriter(os.Stderr, globalFileLogger.open(fileLoggingConfig, pathResolver(fileLoggingConfig.File)))
	}
	handler, err := HandlerFromLogType(logType, output)
	if err != nil {
		return fmt.Errorf("error parsing log type when creating handler: %w", err)
	}
	level, err := ToSlogLevel(logLevel)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}

	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(level)
	log.SetDefault(log.NewLogger(glogger))
	return nil
}

// CloseFileLogger flushes and closes the file opened by InitLog, if any
func CloseFileLogger() error {
	return globalFileLogger.close()
}
