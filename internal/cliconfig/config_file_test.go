package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Device:       "/dev/ttyUSB0",
				BaudRate:     115200,
				ReadTimeout:  "250ms",
				DataFile:     "/var/lib/moisture/log.json",
				MaxRecords:   500,
				SyncWindow:   "5s",
				IdleInterval: "50ms",
				Echo:         &falseVal,
				LogLevel:     "debug",
			},
			changed: map[string]bool{},
			initial: Config{Echo: true},
			expected: Config{
				Device:       "/dev/ttyUSB0",
				BaudRate:     115200,
				ReadTimeout:  250 * time.Millisecond,
				DataFile:     "/var/lib/moisture/log.json",
				MaxRecords:   500,
				SyncWindow:   5 * time.Second,
				IdleInterval: 50 * time.Millisecond,
				Echo:         false,
				LogLevel:     "debug",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Device:   "/dev/ttyS1",
				DataFile: "file.json",
				Echo:     &trueVal,
			},
			changed: map[string]bool{"device": true, "echo": true},
			initial: Config{Device: "/dev/flag"},
			expected: Config{
				Device:   "/dev/flag",
				DataFile: "file.json",
			},
		},
		{
			name:       "zero sync window is kept",
			fileConfig: FileConfig{SyncWindow: "0s"},
			changed:    map[string]bool{},
			initial:    Config{SyncWindow: 2 * time.Second},
			expected:   Config{},
		},
		{
			name:       "non-positive ints are ignored",
			fileConfig: FileConfig{BaudRate: -1, MaxRecords: 0},
			changed:    map[string]bool{},
			initial:    Config{BaudRate: 9600, MaxRecords: 100},
			expected:   Config{BaudRate: 9600, MaxRecords: 100},
		},
		{
			name:       "invalid duration",
			fileConfig: FileConfig{IdleInterval: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
device = "/dev/ttyUSB0"
baud_rate = 9600
data_file = "/tmp/data_log.json"
max_records = 50
sync_window = "3s"
echo = false
log_level = "warn"
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	falseVal := false
	want := FileConfig{
		Device:     "/dev/ttyUSB0",
		BaudRate:   9600,
		DataFile:   "/tmp/data_log.json",
		MaxRecords: 50,
		SyncWindow: "3s",
		Echo:       &falseVal,
		LogLevel:   "warn",
	}
	if diff := cmp.Diff(want, fc); diff != "" {
		t.Errorf("LoadFileConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
device = "/dev/ttyACM0"
this is not valid toml
`
	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	if _, err := LoadFileConfig(configPath); err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.HasSuffix(path, filepath.Join(".moisturelog", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %v, want it under .moisturelog", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}
	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
