package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNopBeforeInit(t *testing.T) {
	// must not panic before Init
	Info("not initialized", zap.Int("n", 1))
	Sugar.Debugf("not initialized %d", 2)
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "geomtool.log")

	cfg := FileConfig{Path: logFile, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}
	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer func() {
		Log = zap.NewNop()
		Sugar = Log.Sugar()
	}()

	Debug("welded mesh", zap.Int("verts", 8))
	Warn("skipping primitive", zap.String("mode", "POINTS"))
	Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "welded mesh") || !strings.Contains(out, `"verts":8`) {
		t.Errorf("debug entry missing from log: %s", out)
	}
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("warn entry missing from log: %s", out)
	}
}
