package amp

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ExportStatus tracks the state of the patch-sheet export job.
type ExportStatus struct {
	mu         sync.RWMutex
	Exporting  bool   `json:"exporting"`
	LastError  string `json:"lastError,omitempty"`
	LastExport string `json:"lastExport,omitempty"` // RFC3339
	FilePath   string `json:"filePath,omitempty"`
}

// Snapshot returns a copy of the current status.
func (s *ExportStatus) Snapshot() ExportStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ExportStatus{
		Exporting:  s.Exporting,
		LastError:  s.LastError,
		LastExport: s.LastExport,
		FilePath:   s.FilePath,
	}
}

// Begin marks an export as in progress. It returns false if one already is.
func (s *ExportStatus) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Exporting {
		return false
	}
	s.Exporting = true
	s.LastError = ""
	return true
}

// SetResult records the outcome of a finished export.
func (s *ExportStatus) SetResult(err error, filePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Exporting = false
	s.LastExport = time.Now().UTC().Format(time.RFC3339)
	s.FilePath = filePath
	if err != nil {
		s.LastError = err.Error()
	} else {
		s.LastError = ""
	}
}

// RunExportJob writes the patch sheet of the amplifier's cached state to a
// timestamped file in dir and returns its path.
func RunExportJob(a *Amp, dir string) (string, error) {
	snap := a.Snapshot()
	if !snap.Online {
		return "", fmt.Errorf("export: amplifier offline")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	outPath := filepath.Join(dir, fmt.Sprintf("patches_%s.pdf", timestamp))
	slog.Info("patch sheet export starting", "path", outPath)
	if err := WriteSheet(snap, outPath); err != nil {
		return "", fmt.Errorf("write patch sheet: %w", err)
	}
	slog.Info("patch sheet exported", "path", outPath, "presets", len(snap.Presets))
	return outPath, nil
}
