package generator_test

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexmullins/zip"

	"github.com/kacebover/iconset/bundle"
	"github.com/kacebover/iconset/config"
	"github.com/kacebover/iconset/generator"
	"github.com/kacebover/iconset/ico"
	"github.com/kacebover/iconset/sheet"
)

// TestIntegrationFullWorkflow tests config -> icons -> manifest, ICO, sheet and bundle
func TestIntegrationFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()

	// Step 1: Write and load a config
	configPath := filepath.Join(tmpDir, "iconset.toml")
	cfg := config.DefaultConfig()
	cfg.OutputDir = filepath.Join(tmpDir, "extension", "images")
	cfg.Sizes = []int{16, 32, 48, 128}
	cfg.Engine = "antialiased"
	cfg.Workers = 4
	if err := config.SaveConfig(configPath, cfg); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Step 2: Generate
	gc, err := loaded.GeneratorConfig()
	if err != nil {
		t.Fatal(err)
	}
	g, err := generator.New(gc)
	if err != nil {
		t.Fatal(err)
	}
	result, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(result.Files) != 4 {
		t.Fatalf("Expected 4 files, got %d", len(result.Files))
	}

	// Step 3: Manifest
	if err := generator.WriteManifest(loaded.ManifestPath(), result, loaded.ManifestPrefix()); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "extension", "icons.json")); err != nil {
		t.Errorf("manifest missing: %v", err)
	}

	// Step 4: ICO and sheet from the in-memory images
	var images []image.Image
	for _, f := range result.Files {
		images = append(images, f.Image)
	}
	if err := ico.WriteFile(loaded.IcoPath(), images); err != nil {
		t.Fatalf("ico.WriteFile failed: %v", err)
	}
	if err := sheet.WriteFile(loaded.SheetPath(), loaded.SheetConfig(), images); err != nil {
		t.Fatalf("sheet.WriteFile failed: %v", err)
	}

	// Step 5: Encrypted bundle of the PNGs only
	bc := bundle.DefaultConfig()
	bc.OutputPath = loaded.BundlePath()
	bc.Password = "integration"
	bc.Prefix = loaded.ManifestPrefix()
	b, err := bundle.NewBundler(bc)
	if err != nil {
		t.Fatal(err)
	}
	bres, err := b.Bundle(bundle.EntriesFromPaths(result.Paths()))
	if err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}
	if bres.FilesAdded != 4 {
		t.Errorf("FilesAdded = %d, want 4", bres.FilesAdded)
	}

	// Step 6: Decrypt and compare against disk
	reader, err := zip.OpenReader(bres.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	for i, f := range reader.File {
		f.SetPassword("integration")
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		want, _ := os.ReadFile(result.Files[i].Path)
		if !bytes.Equal(got, want) {
			t.Errorf("%s differs from %s", f.Name, result.Files[i].Path)
		}
	}
}
