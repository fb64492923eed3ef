// Package main provides GUI launcher
package main

import (
	"fmt"
)

// LaunchGUI explains how to start the preview window, which lives in its
// own binary so the CLI builds without cgo
func LaunchGUI() {
	fmt.Println("🖥️  The preview window is a separate binary:")
	fmt.Println("  go build -o iconset-gui ./cmd/gui")
	fmt.Println("Then run: ./iconset-gui -config iconset.json")
}
