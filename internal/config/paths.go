package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathsConfig contains the on-disk layout of the pipeline. Every path
// below BaseDir is derived so a single env var relocates the whole
// data tree.
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	RawDir       string `yaml:"raw_dir" envconfig:"RAW_DIR"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// resolve fills the derived directories and makes everything absolute.
func (p *PathsConfig) resolve() error {
	base, err := filepath.Abs(p.BaseDir)
	if err != nil {
		return fmt.Errorf("resolve base dir: %w", err)
	}
	p.BaseDir = base

	if p.RawDir == "" {
		p.RawDir = filepath.Join(base, "raw")
	}
	if p.ProcessedDir == "" {
		p.ProcessedDir = filepath.Join(base, "processed")
	}
	if !filepath.IsAbs(p.LogsDir) {
		logs, err := filepath.Abs(p.LogsDir)
		if err != nil {
			return fmt.Errorf("resolve logs dir: %w", err)
		}
		p.LogsDir = logs
	}
	return nil
}

// EnsureDirectories creates every directory the pipeline writes into.
func (p *PathsConfig) EnsureDirectories() error {
	for _, dir := range []string{p.BaseDir, p.RawDir, p.ProcessedDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RawPath returns the location of a raw CSV by file name.
func (p *PathsConfig) RawPath(name string) string {
	return filepath.Join(p.RawDir, name)
}

// ProcessedPath returns the location of a processed output by file name.
func (p *PathsConfig) ProcessedPath(name string) string {
	return filepath.Join(p.ProcessedDir, name)
}

// LogPath returns the location of a log file by file name.
func (p *PathsConfig) LogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}
