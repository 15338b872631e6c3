package studio

import (
	"sync"
	"time"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/rs/zerolog"
)

// LogType is the severity shown next to an activity entry.
type LogType string

const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogError   LogType = "error"
)

// LogEntry is one line of the activity log.
type LogEntry struct {
	Msg  string    `json:"msg"`
	Type LogType   `json:"type"`
	Time time.Time `json:"time"`
}

// ActivityLog is a bounded, newest-first record of user-visible events.
// Entries are mirrored to the process logger.
type ActivityLog struct {
	mu      sync.Mutex
	entries []LogEntry
	max     int
	now     func() time.Time
	log     zerolog.Logger
}

func NewActivityLog(max int) *ActivityLog {
	if max <= 0 {
		max = 200
	}
	return &ActivityLog{
		max: max,
		now: time.Now,
		log: logger.Component("activity"),
	}
}

func (a *ActivityLog) Info(msg string)    { a.add(msg, LogInfo) }
func (a *ActivityLog) Success(msg string) { a.add(msg, LogSuccess) }
func (a *ActivityLog) Error(msg string)   { a.add(msg, LogError) }

func (a *ActivityLog) add(msg string, typ LogType) {
	a.mu.Lock()
	a.entries = append([]LogEntry{{Msg: msg, Type: typ, Time: a.now()}}, a.entries...)
	if len(a.entries) > a.max {
		a.entries = a.entries[:a.max]
	}
	a.mu.Unlock()

	event := a.log.Info()
	if typ == LogError {
		event = a.log.Warn()
	}
	event.Str("type", string(typ)).Msg(msg)
}

// Entries returns a copy of the log, newest first.
func (a *ActivityLog) Entries() []LogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]LogEntry{}, a.entries...)
}

// Clear empties the log.
func (a *ActivityLog) Clear() {
	a.mu.Lock()
	a.entries = nil
	a.mu.Unlock()
}
