// Package storage provides XDG-compliant data paths for impactcheck.
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "impactcheck"

	logFilename     = "impactcheck.log"
	historyFilename = "history.db"
)

// Manager handles storage paths behind a filesystem abstraction.
type Manager struct {
	fs afero.Fs
}

func New(fs afero.Fs) *Manager {
	return &Manager{fs: fs}
}

// GetDataDir returns the XDG data directory, creating it if necessary.
func (m *Manager) GetDataDir() (string, error) {
	dataDir := filepath.Join(xdg.DataHome, AppName)
	if err := m.fs.MkdirAll(dataDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return dataDir, nil
}

// GetLogPath returns the full path to the log file.
func (m *Manager) GetLogPath() (string, error) {
	dataDir, err := m.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, logFilename), nil
}

// GetHistoryPath returns the full path to the run-history database.
func (m *Manager) GetHistoryPath() (string, error) {
	dataDir, err := m.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, historyFilename), nil
}
