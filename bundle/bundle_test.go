package bundle

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexmullins/zip"

	"github.com/kacebover/iconset/generator"
)

// generateIcons writes the default icon set into a temp dir
func generateIcons(t *testing.T) *generator.Result {
	t.Helper()
	result, err := generator.Generate(context.Background(), filepath.Join(t.TempDir(), "images"))
	if err != nil {
		t.Fatalf("Failed to generate icons: %v", err)
	}
	return result
}

// Helper function to read every entry of a ZIP, decrypting when a password is given
func readZIP(t *testing.T, zipPath, password string) map[string][]byte {
	t.Helper()

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("Failed to open ZIP: %v", err)
	}
	defer reader.Close()

	contents := make(map[string][]byte)
	for _, f := range reader.File {
		if password != "" {
			if !f.IsEncrypted() {
				t.Errorf("File %s should be encrypted", f.Name)
			}
			f.SetPassword(password)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open file %s in ZIP: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("Failed to read file %s from ZIP: %v", f.Name, err)
		}
		contents[f.Name] = data
	}
	return contents
}

// TestBundle_Plain tests an unencrypted icon archive
func TestBundle_Plain(t *testing.T) {
	icons := generateIcons(t)
	zipPath := filepath.Join(t.TempDir(), "icons.zip")

	config := DefaultConfig()
	config.OutputPath = zipPath
	b, err := NewBundler(config)
	if err != nil {
		t.Fatalf("NewBundler failed: %v", err)
	}

	result, err := b.Bundle(EntriesFromPaths(icons.Paths()))
	if err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}

	if result.FilesAdded != 3 {
		t.Errorf("Expected 3 files added, got %d", result.FilesAdded)
	}
	if result.Encrypted {
		t.Error("Result should not be marked encrypted")
	}
	if result.ArchiveSize <= 0 {
		t.Error("Archive size should be positive")
	}

	var total int64
	for _, f := range icons.Files {
		total += f.Bytes
	}
	if result.TotalSize != total {
		t.Errorf("TotalSize = %d, want %d", result.TotalSize, total)
	}

	contents := readZIP(t, zipPath, "")
	for _, f := range icons.Files {
		name := "images/" + f.Name
		data, ok := contents[name]
		if !ok {
			t.Errorf("Missing %s in archive", name)
			continue
		}
		onDisk, _ := os.ReadFile(f.Path)
		if !bytes.Equal(data, onDisk) {
			t.Errorf("%s content differs from disk", name)
		}
	}
}

// TestBundle_Encrypted tests AES encryption and a wrong password
func TestBundle_Encrypted(t *testing.T) {
	icons := generateIcons(t)
	zipPath := filepath.Join(t.TempDir(), "icons.zip")
	password := "hunter22"

	config := DefaultConfig()
	config.OutputPath = zipPath
	config.Password = password
	b, err := NewBundler(config)
	if err != nil {
		t.Fatal(err)
	}

	result, err := b.Bundle(EntriesFromPaths(icons.Paths()))
	if err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}
	if !result.Encrypted {
		t.Error("Result should be marked encrypted")
	}

	contents := readZIP(t, zipPath, password)
	data := contents["images/icon16.png"]
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decrypted icon is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("Decrypted icon width = %d", img.Bounds().Dx())
	}

	// Wrong password must not yield the original bytes
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	f := reader.File[0]
	f.SetPassword("wrong-password")
	rc, err := f.Open()
	if err == nil {
		got, readErr := io.ReadAll(rc)
		rc.Close()
		if readErr == nil && bytes.Equal(got, contents[f.Name]) {
			t.Error("Wrong password decrypted the entry")
		}
	}
}

func TestBundle_CustomNamesAndProgress(t *testing.T) {
	icons := generateIcons(t)
	zipPath := filepath.Join(t.TempDir(), "nested", "out", "icons.zip")

	var progress []string
	config := DefaultConfig()
	config.OutputPath = zipPath
	config.Prefix = "/assets/icons/"
	config.OnProgress = func(added, total int, archivePath string) {
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		if added != len(progress)+1 {
			t.Errorf("added = %d, want %d", added, len(progress)+1)
		}
		progress = append(progress, archivePath)
	}

	b, err := NewBundler(config)
	if err != nil {
		t.Fatal(err)
	}

	entries := EntriesFromPaths(icons.Paths())
	entries[0].ArchivePath = "favicon.png"

	if _, err := b.Bundle(entries); err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}

	want := []string{"favicon.png", "assets/icons/icon48.png", "assets/icons/icon128.png"}
	if len(progress) != len(want) {
		t.Fatalf("progress = %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("progress[%d] = %s, want %s", i, progress[i], want[i])
		}
	}

	contents := readZIP(t, zipPath, "")
	for _, name := range want {
		if _, ok := contents[name]; !ok {
			t.Errorf("Missing %s in archive", name)
		}
	}
}

func TestBundle_Errors(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "icons.zip")

	config := DefaultConfig()
	config.OutputPath = zipPath
	b, err := NewBundler(config)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := b.Bundle(nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("Bundle(nil) error = %v, want ErrNoFiles", err)
	}

	_, err = b.Bundle([]Entry{{SourcePath: filepath.Join(dir, "missing.png")}})
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("missing file error = %v, want ErrFileNotFound", err)
	}

	_, err = b.Bundle([]Entry{{SourcePath: dir}})
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("directory error = %v, want ErrFileNotFound", err)
	}

	a := filepath.Join(dir, "a", "icon16.png")
	c := filepath.Join(dir, "c", "icon16.png")
	for _, p := range []string{a, c} {
		os.MkdirAll(filepath.Dir(p), 0755)
		os.WriteFile(p, []byte("png"), 0644)
	}
	_, err = b.Bundle(EntriesFromPaths([]string{a, c}))
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("duplicate error = %v, want ErrDuplicateEntry", err)
	}

	// Validation failures never leave an archive behind
	if _, err := os.Stat(zipPath); !os.IsNotExist(err) {
		t.Error("Archive should not exist after failed bundles")
	}
}

func TestNewBundler_Validation(t *testing.T) {
	if _, err := NewBundler(Config{}); !errors.Is(err, ErrInvalidOutput) {
		t.Errorf("empty output error = %v, want ErrInvalidOutput", err)
	}
	if _, err := NewBundler(Config{OutputPath: "x.zip", Password: "abc"}); !errors.Is(err, ErrPasswordTooWeak) {
		t.Errorf("weak password error = %v, want ErrPasswordTooWeak", err)
	}
	if _, err := NewBundler(Config{OutputPath: "x.zip"}); err != nil {
		t.Errorf("no password should be accepted: %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"abc", true},
		{"abcd", false},
		{"a much longer passphrase", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}
