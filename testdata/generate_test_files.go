//go:build ignore
// +build ignore

// Regenerates the sample configs used by the CLI tests.
//
//	go run testdata/generate_test_files.go [dir]
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kacebover/iconset/config"
	"github.com/kacebover/iconset/renderer"
)

func main() {
	baseDir := "testdata"
	if len(os.Args) > 1 {
		baseDir = os.Args[1]
	}

	fmt.Println("📁 Writing sample configs...")

	dark := config.DefaultConfig()
	dark.Sizes = []int{16, 32}
	dark.Background = "#202124"
	dark.Foreground = "#fbbc04"
	dark.Engine = renderer.EngineAntialiased
	dark.OutputDir = "dark"
	write(filepath.Join(baseDir, "dark.yaml"), dark)

	extension := config.DefaultConfig()
	extension.Manifest = true
	extension.Workers = 3
	write(filepath.Join(baseDir, "extension.json"), extension)

	// Hand-written: unknown keys must be rejected
	broken := "sizes = [16]\ncolour = \"red\"\n"
	if err := os.WriteFile(filepath.Join(baseDir, "unknown_key.toml"), []byte(broken), 0644); err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Done")
}

func write(path string, cfg *config.AppConfig) {
	if err := config.SaveConfig(path, cfg); err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  %s\n", path)
}
