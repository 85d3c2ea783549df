// Copyright 2021-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package testhelpers

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"regexp"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/powerup/util/colors"
)

// Fail a test should an error occur
func RequireImpl(t *testing.T, err error, printables ...interface{}) {
	t.Helper()
	if err != nil {
		t.Fatal(colors.Red, printables, err, colors.Clear)
	}
}

func FailImpl(t *testing.T, printables ...interface{}) {
	t.Helper()
	t.Fatal(colors.Red, printables, colors.Clear)
}

func RandomizeSlice(slice []byte) []byte {
	_, err := rand.Read(slice)
	if err != nil {
		panic(err)
	}
	return slice
}

func RandomSlice(size uint64) []byte {
	return RandomizeSlice(make([]byte, size))
}

func RandomHash() common.Hash {
	var hash common.Hash
	RandomizeSlice(hash[:])
	return hash
}

func RandomAddress() common.Address {
	var address common.Address
	RandomizeSlice(address[:])
	return address
}

// Computes a psuedo-random uint64 on the interval [min, max]
func RandomUint64(min, max uint64) uint64 {
	return uint64(rand.Uint64()%(max-min+1) + min)
}

func RandomBool() bool {
	return rand.Int31n(2) == 0
}

// LogHandler records every log line it handles so tests can assert on them.
type LogHandler struct {
	mutex           *sync.Mutex
	t               *testing.T
	records         *[]slog.Record
	terminalHandler slog.Handler
}

func (h *LogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{
		mutex:           h.mutex,
		t:               h.t,
		records:         h.records,
		terminalHandler: h.terminalHandler.WithGroup(name),
	}
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{
		mutex:           h.mutex,
		t:               h.t,
		records:         h.records,
		terminalHandler: h.terminalHandler.WithAttrs(attrs),
	}
}

func (h *LogHandler) Handle(ctx context.Context, record slog.Record) error {
	if err := h.terminalHandler.Handle(ctx, record); err != nil {
		return err
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	*h.records = append(*h.records, record)
	return nil
}

func (h *LogHandler) WasLogged(pattern string) bool {
	re, err := regexp.Compile(pattern)
	RequireImpl(h.t, err)
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, record := range *h.records {
		if re.MatchString(record.Message) {
			return true
		}
	}
	return false
}

func (h *LogHandler) Count(pattern string) int {
	re, err := regexp.Compile(pattern)
	RequireImpl(h.t, err)
	h.mutex.Lock()
	defer h.mutex.Unlock()
	count := 0
	for _, record := range *h.records {
		if re.MatchString(record.Message) {
			count++
		}
	}
	return count
}

func newLogHandler(t *testing.T) *LogHandler {
	records := make([]slog.Record, 0)
	return &LogHandler{
		mutex:           &sync.Mutex{},
		t:               t,
		records:         &records,
		terminalHandler: log.NewTerminalHandler(os.Stderr, false),
	}
}

// InitTestLog routes the default logger through a recording handler at the given verbosity
func InitTestLog(t *testing.T, level slog.Level) *LogHandler {
	handler := newLogHandler(t)
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(level)
	log.SetDefault(log.NewLogger(glogger))
	return handler
}
