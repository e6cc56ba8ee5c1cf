package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewLogger tests logger construction with temp directories
func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		baseDir string
		userID  string
		wantErr bool
	}{
		{
			name:    "valid directory and user ID",
			baseDir: t.TempDir(),
			userID:  "user-123",
			wantErr: false,
		},
		{
			name:    "creates directories if not exist",
			baseDir: filepath.Join(t.TempDir(), "nested", "path"),
			userID:  "user-456",
			wantErr: false,
		},
		{
			name:    "empty user ID",
			baseDir: t.TempDir(),
			userID:  "",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.baseDir, tt.userID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer logger.Close()

			if logger.userID != tt.userID {
				t.Errorf("userID = %v, want %v", logger.userID, tt.userID)
			}
			if logger.baseDir != tt.baseDir {
				t.Errorf("baseDir = %v, want %v", logger.baseDir, tt.baseDir)
			}
			if logger.minLevel != LevelInfo {
				t.Errorf("minLevel = %v, want %v", logger.minLevel, LevelInfo)
			}
		})
	}
}

func TestLog_WritesEventFile(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := NewLogger(baseDir, "u1")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	err = logger.Info(CategoryCache, "cache_hit", "served cached context", map[string]any{
		"age_seconds": 42,
	})
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(baseDir, "users", "u1.jsonl"))
	if err != nil {
		t.Fatalf("failed to read event log: %v", err)
	}

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("event log line is not valid JSON: %v", err)
	}
	if event.Category != CategoryCache {
		t.Errorf("Category = %v, want %v", event.Category, CategoryCache)
	}
	if event.EventType != "cache_hit" {
		t.Errorf("EventType = %v, want cache_hit", event.EventType)
	}
	if event.UserID != "u1" {
		t.Errorf("UserID = %v, want u1", event.UserID)
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should be set automatically")
	}
}

func TestLog_ErrorGoesToErrorLog(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := NewLogger(baseDir, "u1")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	if err := logger.Error(CategorySignal, "adapter_failed", "streak adapter unavailable", nil); err != nil {
		t.Fatalf("Error() error = %v", err)
	}
	logger.Close()

	data, err := os.ReadFile(filepath.Join(baseDir, "errors.jsonl"))
	if err != nil {
		t.Fatalf("failed to read error log: %v", err)
	}
	if len(data) == 0 {
		t.Error("error log should not be empty")
	}
}

func TestLog_SynthesisGoesToSynthesisLog(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := NewLogger(baseDir, "u1")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.SetCycleID("cycle-1")

	if err := logger.Info(CategorySynthesis, "context_built", "synthesis complete", nil); err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	logger.Close()

	data, err := os.ReadFile(filepath.Join(baseDir, "synthesis.jsonl"))
	if err != nil {
		t.Fatalf("failed to read synthesis log: %v", err)
	}

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("synthesis log line is not valid JSON: %v", err)
	}
	if event.CycleID != "cycle-1" {
		t.Errorf("CycleID = %v, want cycle-1", event.CycleID)
	}
}

func TestLog_MinLevelFilters(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := NewLogger(baseDir, "u1")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	// Default min level is info; debug should be dropped
	if err := logger.Debug(CategoryView, "projection", "debug detail", nil); err != nil {
		t.Fatalf("Debug() error = %v", err)
	}
	logger.Close()

	data, _ := os.ReadFile(filepath.Join(baseDir, "users", "u1.jsonl"))
	if len(data) != 0 {
		t.Error("debug event should be filtered at info level")
	}
}

func TestReadRecentEvents(t *testing.T) {
	baseDir := t.TempDir()
	logger, err := NewLogger(baseDir, "u1")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		logger.Log(Event{
			Timestamp: time.Now(),
			Level:     LevelInfo,
			Category:  CategoryCache,
			EventType: "refresh",
		})
	}
	logger.Close()

	events, err := ReadRecentEvents(filepath.Join(baseDir, "users", "u1.jsonl"), 3)
	if err != nil {
		t.Fatalf("ReadRecentEvents() error = %v", err)
	}
	if len(events) != 3 {
		t.Errorf("got %d events, want 3", len(events))
	}
}
