// Package audit records container lifecycle events.
// Events are stored as JSON Lines (JSONL) files, one per container handle.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/firefly-engineering/warden-ctl/internal/config"
)

// EventType classifies a lifecycle event.
type EventType string

const (
	EventCreate  EventType = "create"
	EventLimit   EventType = "limit"
	EventNetwork EventType = "network"
	EventRun     EventType = "run"
	EventSpawn   EventType = "spawn"
	EventDestroy EventType = "destroy"
	EventError   EventType = "error"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Handle    string    `json:"handle"`
	Details   string    `json:"details,omitempty"`
}

// Logger writes and reads events for containers.
// Events are stored in {stateDir}/containers/{handle}.events.jsonl.
type Logger struct {
	paths *config.Paths
}

// NewLogger creates a new audit logger rooted at stateDir.
func NewLogger(stateDir string) *Logger {
	return &Logger{paths: config.NewPaths(stateDir)}
}

func (l *Logger) eventPath(handle string) (string, error) {
	return config.SafePath(l.paths.ContainersDir, handle, ".events.jsonl")
}

// Log appends an event to the container's log.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	path, err := l.eventPath(event.Handle)
	if err != nil {
		return fmt.Errorf("invalid handle %q: %w", event.Handle, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogEvent is a convenience method that creates and logs an event.
func (l *Logger) LogEvent(eventType EventType, handle, details string) error {
	return l.Log(Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Handle:    handle,
		Details:   details,
	})
}

// Events reads all events for a container in chronological order.
func (l *Logger) Events(handle string) ([]Event, error) {
	path, err := l.eventPath(handle)
	if err != nil {
		return nil, fmt.Errorf("invalid handle %q: %w", handle, err)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}

	return events, nil
}

// Remove deletes the event log for a container.
func (l *Logger) Remove(handle string) error {
	path, err := l.eventPath(handle)
	if err != nil {
		return fmt.Errorf("invalid handle %q: %w", handle, err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
