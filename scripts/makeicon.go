//go:build ignore
// +build ignore

// Renders Icon.png for `fyne package` from the same recipe as the icon set.
//
//	go run scripts/makeicon.go [output.png]
package main

import (
	"fmt"
	"os"

	"github.com/kacebover/iconset/generator"
	"github.com/kacebover/iconset/renderer"
)

const appIconSize = 512

func main() {
	if len(os.Args) < 2 {
		os.Args = append(os.Args, "Icon.png")
	}

	opts := renderer.DefaultOptions()
	opts.Engine = renderer.AntialiasedEngine{}

	img, err := renderer.New(opts).Render(appIconSize)
	if err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}

	data, err := generator.EncodePNG(img)
	if err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(os.Args[1], data, 0644); err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Wrote %s (%dx%d)\n", os.Args[1], appIconSize, appIconSize)
}
