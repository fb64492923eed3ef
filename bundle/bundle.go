// Package bundle packs generated icons into a ZIP archive, optionally
// AES-256 encrypted.
package bundle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/alexmullins/zip"
)

// Common errors
var (
	ErrNoFiles         = errors.New("no files provided for bundling")
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidOutput   = errors.New("invalid output path")
	ErrDuplicateEntry  = errors.New("duplicate archive entry")
	ErrPasswordTooWeak = errors.New("password must be at least 4 characters")
)

// ProgressCallback is called after each file is added to the archive
type ProgressCallback func(added, total int, archivePath string)

// Config holds bundling configuration
type Config struct {
	// OutputPath is the full path for the output ZIP file
	OutputPath string

	// Password encrypts every entry with AES-256 when set
	Password string

	// Prefix is prepended to every archive path ("images" gives images/icon16.png)
	Prefix string

	// OnProgress reports each added file
	OnProgress ProgressCallback

	// BufferSize for streaming copies (default: 32KB)
	BufferSize int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Prefix:     "images",
		BufferSize: 32 * 1024,
	}
}

// Entry is a file to add to the archive
type Entry struct {
	// SourcePath is the file on disk
	SourcePath string

	// ArchivePath is the name inside the archive (default: Prefix/base name)
	ArchivePath string
}

// Result contains the result of a bundling operation
type Result struct {
	OutputPath  string
	FilesAdded  int
	TotalSize   int64
	ArchiveSize int64
	Encrypted   bool
}

// Bundler writes icon archives
type Bundler struct {
	config Config

	filesAdded int32
	totalBytes int64
}

// NewBundler creates a Bundler with the given config
func NewBundler(config Config) (*Bundler, error) {
	if strings.TrimSpace(config.OutputPath) == "" {
		return nil, ErrInvalidOutput
	}
	if config.Password != "" {
		if err := ValidatePassword(config.Password); err != nil {
			return nil, err
		}
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 32 * 1024
	}
	config.Prefix = strings.Trim(filepath.ToSlash(config.Prefix), "/")

	return &Bundler{config: config}, nil
}

// ArchivePath returns the name a source file gets inside the archive
func (b *Bundler) ArchivePath(e Entry) string {
	name := e.ArchivePath
	if name == "" {
		name = path.Join(b.config.Prefix, filepath.Base(e.SourcePath))
	}
	// Normalize path separators for ZIP
	return strings.TrimPrefix(filepath.ToSlash(name), "/")
}

// Bundle writes entries into the archive. On failure the partial archive
// is removed.
func (b *Bundler) Bundle(entries []Entry) (*Result, error) {
	if len(entries) == 0 {
		return nil, ErrNoFiles
	}

	atomic.StoreInt32(&b.filesAdded, 0)
	atomic.StoreInt64(&b.totalBytes, 0)

	// Validate everything before touching the output
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		info, err := os.Stat(e.SourcePath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, e.SourcePath)
			}
			return nil, fmt.Errorf("failed to stat file %s: %w", e.SourcePath, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, e.SourcePath)
		}
		name := b.ArchivePath(e)
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
		}
		seen[name] = true
	}

	outputDir := filepath.Dir(b.config.OutputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := b.writeArchive(entries); err != nil {
		os.Remove(b.config.OutputPath)
		return nil, err
	}

	info, err := os.Stat(b.config.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat output archive: %w", err)
	}

	return &Result{
		OutputPath:  b.config.OutputPath,
		FilesAdded:  int(atomic.LoadInt32(&b.filesAdded)),
		TotalSize:   atomic.LoadInt64(&b.totalBytes),
		ArchiveSize: info.Size(),
		Encrypted:   b.config.Password != "",
	}, nil
}

func (b *Bundler) writeArchive(entries []Entry) error {
	zipFile, err := os.Create(b.config.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)
	for _, e := range entries {
		if err := b.addFile(zipWriter, e); err != nil {
			zipWriter.Close()
			return err
		}
		b.reportProgress(len(entries), b.ArchivePath(e))
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return zipFile.Close()
}

// addFile streams one source file into the archive
func (b *Bundler) addFile(zipWriter *zip.Writer, e Entry) error {
	src, err := os.Open(e.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", e.SourcePath, err)
	}
	defer src.Close()

	name := b.ArchivePath(e)

	var w io.Writer
	if b.config.Password != "" {
		w, err = zipWriter.Encrypt(name, b.config.Password)
	} else {
		w, err = zipWriter.Create(name)
	}
	if err != nil {
		return fmt.Errorf("failed to create archive entry for %s: %w", e.SourcePath, err)
	}

	n, err := io.CopyBuffer(w, src, make([]byte, b.config.BufferSize))
	if err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", name, err)
	}

	atomic.AddInt64(&b.totalBytes, n)
	atomic.AddInt32(&b.filesAdded, 1)
	return nil
}

// reportProgress calls the progress callback if configured
func (b *Bundler) reportProgress(total int, archivePath string) {
	if b.config.OnProgress != nil {
		b.config.OnProgress(int(atomic.LoadInt32(&b.filesAdded)), total, archivePath)
	}
}

// EntriesFromPaths turns plain file paths into entries with default names
func EntriesFromPaths(paths []string) []Entry {
	entries := make([]Entry, len(paths))
	for i, p := range paths {
		entries[i] = Entry{SourcePath: p}
	}
	return entries
}

// ValidatePassword checks if a password meets minimum requirements
func ValidatePassword(password string) error {
	if len(password) < 4 {
		return ErrPasswordTooWeak
	}
	return nil
}
