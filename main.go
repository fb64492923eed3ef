package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/kacebover/iconset/bundle"
	"github.com/kacebover/iconset/config"
	"github.com/kacebover/iconset/generator"
	"github.com/kacebover/iconset/ico"
	"github.com/kacebover/iconset/renderer"
	"github.com/kacebover/iconset/sheet"
	"github.com/kacebover/iconset/watch"
)

func main() {
	// Subcommands
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "generate":
			runGenerateCommand(os.Args[2:])
			return
		case "bundle":
			runBundleCommand(os.Args[2:])
			return
		case "ico":
			runIcoCommand(os.Args[2:])
			return
		case "sheet":
			runSheetCommand(os.Args[2:])
			return
		case "watch":
			runWatchCommand(os.Args[2:])
			return
		case "config":
			runConfigCommand(os.Args[2:])
			return
		case "gui":
			LaunchGUI()
			return
		case "help", "--help", "-h":
			printMainHelp()
			return
		}
	}

	// Default: generate the stock icon set, accepting generate flags
	runGenerateCommand(os.Args[1:])
}

func printMainHelp() {
	fmt.Println("🎨 iconset - Clock & Document Icon Generator")
	fmt.Println("============================================")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  generate   Render PNG icons (default when no command is given)")
	fmt.Println("  bundle     Generate icons and pack them into a ZIP archive")
	fmt.Println("  ico        Write a multi-size ICO file")
	fmt.Println("  sheet      Write a magnified preview sheet")
	fmt.Println("  watch      Regenerate whenever a config file changes")
	fmt.Println("  config     Print or initialize a config file")
	fmt.Println("  gui        Show how to launch the preview window")
	fmt.Println("  help       Show this help")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  iconset                      # writes images/icon16.png, icon48.png, icon128.png")
	fmt.Println("  iconset generate [options]")
	fmt.Println("  iconset bundle -password secret")
	fmt.Println()
	fmt.Println("Run 'iconset <command> -h' for details.")
}

// fail prints a diagnostic and exits non-zero
func fail(format string, args ...any) {
	fmt.Printf("❌ Error: "+format+"\n", args...)
	os.Exit(1)
}

// ═══════════════════════════════════════════════════════════════════════════
// SHARED FLAGS
// ═══════════════════════════════════════════════════════════════════════════

// renderFlags are the settings every rendering command accepts
type renderFlags struct {
	configPath *string
	outputDir  *string
	sizes      *string
	engine     *string
	background *string
	foreground *string
	workers    *int
}

func addRenderFlags(fs *flag.FlagSet) *renderFlags {
	return &renderFlags{
		configPath: fs.String("config", "", "Config file (.json, .toml, .yaml)"),
		outputDir:  fs.String("out", generator.DefaultOutputDir, "Output directory"),
		sizes:      fs.String("sizes", "16,48,128", "Comma separated icon sizes"),
		engine:     fs.String("engine", renderer.EngineAliased, "Render engine: "+strings.Join(renderer.EngineNames(), ", ")),
		background: fs.String("bg", "#4285f4", "Background color"),
		foreground: fs.String("fg", "#ffffff", "Foreground color"),
		workers:    fs.Int("workers", 1, "Sizes rendered in parallel"),
	}
}

// load reads the config file if given and applies explicitly set flags on top
func (rf *renderFlags) load(fs *flag.FlagSet) (*config.AppConfig, error) {
	cfg := config.DefaultConfig()
	if *rf.configPath != "" {
		loaded, err := config.LoadConfig(*rf.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.OutputDir = *rf.outputDir
		case "sizes":
			sizes, err := parseSizes(*rf.sizes)
			if err != nil {
				parseErr = err
			}
			cfg.Sizes = sizes
		case "engine":
			cfg.Engine = *rf.engine
		case "bg":
			cfg.Background = *rf.background
		case "fg":
			cfg.Foreground = *rf.foreground
		case "workers":
			cfg.Workers = *rf.workers
		}
	})
	if parseErr != nil {
		return nil, parseErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", renderer.ErrInvalidSize, part)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, generator.ErrNoSizes
	}
	return sizes, nil
}

// generate runs the generator for cfg and prints one line per written file
func generate(ctx context.Context, cfg *config.AppConfig, verbose bool) (*generator.Result, error) {
	gc, err := cfg.GeneratorConfig()
	if err != nil {
		return nil, err
	}
	if verbose {
		gc.OnProgress = func(done, total int, file generator.File, err error) {
			if err == nil {
				fmt.Printf("🔄 Rendered %dpx (%d/%d)\n", file.Size, done, total)
			}
		}
	}

	g, err := generator.New(gc)
	if err != nil {
		return nil, err
	}

	result, genErr := g.Generate(ctx)
	if result != nil {
		for _, f := range result.Files {
			fmt.Printf("Generated %s\n", f.Name)
		}
		for _, f := range result.Failed {
			fmt.Printf("⚠️  Failed %dpx: %v\n", f.Size, f.Err)
		}
	}
	if genErr != nil {
		return result, genErr
	}

	if cfg.Manifest {
		if err := generator.WriteManifest(cfg.ManifestPath(), result, cfg.ManifestPrefix()); err != nil {
			return result, err
		}
		fmt.Printf("📝 Wrote %s\n", cfg.ManifestPath())
	}
	return result, nil
}

// renderImages renders sizes in memory without touching the output dir
func renderImages(cfg *config.AppConfig, sizes []int) ([]image.Image, error) {
	r, err := cfg.Renderer()
	if err != nil {
		return nil, err
	}
	images := make([]image.Image, 0, len(sizes))
	for _, size := range sizes {
		img, err := r.Render(size)
		if err != nil {
			return nil, fmt.Errorf("render %dpx: %w", size, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// GENERATE
// ═══════════════════════════════════════════════════════════════════════════

func runGenerateCommand(args []string) {
	genCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	rf := addRenderFlags(genCmd)
	pattern := genCmd.String("pattern", generator.DefaultFilePattern, "File name pattern with one %d")
	manifest := genCmd.Bool("manifest", false, "Also write icons.json next to the output directory")
	verbose := genCmd.Bool("verbose", false, "Verbose output")

	genCmd.Usage = func() {
		fmt.Println("🎨 Generate Icons")
		fmt.Println("=================")
		fmt.Println()
		fmt.Println("Renders the clock-and-document icon at each size and writes")
		fmt.Println("<out>/icon<size>.png, overwriting existing files.")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  iconset generate [options]")
		fmt.Println()
		fmt.Println("Options:")
		genCmd.PrintDefaults()
	}

	if err := genCmd.Parse(args); err != nil {
		os.Exit(1)
	}
	// Also catches mistyped commands, which land here as the default
	if genCmd.NArg() > 0 {
		fmt.Printf("❌ Error: unknown command or argument %q\n\n", genCmd.Arg(0))
		printMainHelp()
		os.Exit(1)
	}

	cfg, err := rf.load(genCmd)
	if err != nil {
		fail("%v", err)
	}
	genCmd.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pattern":
			cfg.FilePattern = *pattern
		case "manifest":
			cfg.Manifest = *manifest
		}
	})
	if err := cfg.Validate(); err != nil {
		fail("%v", err)
	}

	if _, err := generate(context.Background(), cfg, *verbose); err != nil {
		fail("%v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// BUNDLE
// ═══════════════════════════════════════════════════════════════════════════

func runBundleCommand(args []string) {
	bundleCmd := flag.NewFlagSet("bundle", flag.ExitOnError)
	rf := addRenderFlags(bundleCmd)
	outputPath := bundleCmd.String("output", "", "Archive path (default: icons.zip next to the output directory)")
	password := bundleCmd.String("password", "", "Encrypt entries with AES-256 using this password")
	prompt := bundleCmd.Bool("encrypt", false, "Prompt for a password")
	verbose := bundleCmd.Bool("verbose", false, "Verbose output")

	bundleCmd.Usage = func() {
		fmt.Println("📦 Bundle Icons")
		fmt.Println("===============")
		fmt.Println()
		fmt.Println("Generates the icons, then packs them into a ZIP archive.")
		fmt.Println("With a password every entry is AES-256 encrypted (WinZip compatible).")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  iconset bundle [options]")
		fmt.Println()
		fmt.Println("Options:")
		bundleCmd.PrintDefaults()
	}

	if err := bundleCmd.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := rf.load(bundleCmd)
	if err != nil {
		fail("%v", err)
	}

	pwd := *password
	if *prompt && pwd == "" {
		pwd = promptPassword("Enter password: ")
		if confirm := promptPassword("Confirm password: "); confirm != pwd {
			fail("passwords do not match")
		}
	}
	if pwd != "" {
		if err := bundle.ValidatePassword(pwd); err != nil {
			fail("%v", err)
		}
	}

	result, err := generate(context.Background(), cfg, *verbose)
	if err != nil {
		fail("%v", err)
	}

	bc := bundle.DefaultConfig()
	bc.OutputPath = cfg.BundlePath()
	if *outputPath != "" {
		bc.OutputPath = *outputPath
		if !strings.HasSuffix(strings.ToLower(bc.OutputPath), ".zip") {
			bc.OutputPath += ".zip"
		}
	}
	bc.Password = pwd
	bc.Prefix = cfg.ManifestPrefix()
	if *verbose {
		bc.OnProgress = func(added, total int, archivePath string) {
			fmt.Printf("🔄 Added %s (%d/%d)\n", archivePath, added, total)
		}
	}

	b, err := bundle.NewBundler(bc)
	if err != nil {
		fail("%v", err)
	}
	res, err := b.Bundle(bundle.EntriesFromPaths(result.Paths()))
	if err != nil {
		fail("bundle failed: %v", err)
	}

	fmt.Println()
	fmt.Println("✅ Bundle complete!")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("📦 Archive:       %s\n", res.OutputPath)
	fmt.Printf("📁 Files:         %d\n", res.FilesAdded)
	fmt.Printf("📊 Icons size:    %s\n", formatBytes(res.TotalSize))
	fmt.Printf("📊 Archive size:  %s\n", formatBytes(res.ArchiveSize))
	if res.Encrypted {
		fmt.Println("🔐 Encrypted:     AES-256")
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

// stdin is shared so consecutive prompts see buffered lines
var stdin = bufio.NewReader(os.Stdin)

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	password, _ := stdin.ReadString('\n')
	return strings.TrimSpace(password)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), []string{"KB", "MB", "GB", "TB"}[exp])
}

// ═══════════════════════════════════════════════════════════════════════════
// ICO / SHEET
// ═══════════════════════════════════════════════════════════════════════════

func runIcoCommand(args []string) {
	icoCmd := flag.NewFlagSet("ico", flag.ExitOnError)
	rf := addRenderFlags(icoCmd)
	outputPath := icoCmd.String("output", "", "ICO path (default: <out>/favicon.ico)")

	icoCmd.Usage = func() {
		fmt.Println("🪟 Write ICO")
		fmt.Println("============")
		fmt.Println()
		fmt.Println("Renders every size up to 256px into one PNG-compressed ICO file.")
		fmt.Println()
		fmt.Println("Options:")
		icoCmd.PrintDefaults()
	}

	if err := icoCmd.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := rf.load(icoCmd)
	if err != nil {
		fail("%v", err)
	}

	var sizes []int
	for _, s := range cfg.Sizes {
		if s <= 256 {
			sizes = append(sizes, s)
		} else {
			fmt.Printf("⚠️  Skipping %dpx: ICO entries are limited to 256px\n", s)
		}
	}
	if len(sizes) == 0 {
		fail("%v", ico.ErrNoEntries)
	}

	images, err := renderImages(cfg, sizes)
	if err != nil {
		fail("%v", err)
	}

	path := cfg.IcoPath()
	if *outputPath != "" {
		path = *outputPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fail("%v", err)
	}
	if err := ico.WriteFile(path, images); err != nil {
		fail("%v", err)
	}
	fmt.Printf("✅ Wrote %s (%d sizes)\n", path, len(images))
}

func runSheetCommand(args []string) {
	sheetCmd := flag.NewFlagSet("sheet", flag.ExitOnError)
	rf := addRenderFlags(sheetCmd)
	outputPath := sheetCmd.String("output", "", "Sheet path (default: <out>/sheet.png)")
	scale := sheetCmd.Int("scale", 4, "Integer magnification")
	filter := sheetCmd.String("filter", sheet.FilterNearest, "Scaling filter: nearest or smooth")

	sheetCmd.Usage = func() {
		fmt.Println("🖼️  Write Preview Sheet")
		fmt.Println("======================")
		fmt.Println()
		fmt.Println("Places every size side by side, magnified, on one PNG.")
		fmt.Println()
		fmt.Println("Options:")
		sheetCmd.PrintDefaults()
	}

	if err := sheetCmd.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := rf.load(sheetCmd)
	if err != nil {
		fail("%v", err)
	}
	sheetCmd.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scale":
			cfg.SheetScale = *scale
		case "filter":
			cfg.SheetFilter = *filter
		}
	})
	if err := cfg.Validate(); err != nil {
		fail("%v", err)
	}

	images, err := renderImages(cfg, cfg.Sizes)
	if err != nil {
		fail("%v", err)
	}

	path := cfg.SheetPath()
	if *outputPath != "" {
		path = *outputPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fail("%v", err)
	}
	if err := sheet.WriteFile(path, cfg.SheetConfig(), images); err != nil {
		fail("%v", err)
	}
	fmt.Printf("✅ Wrote %s\n", path)
}

// ═══════════════════════════════════════════════════════════════════════════
// WATCH
// ═══════════════════════════════════════════════════════════════════════════

func runWatchCommand(args []string) {
	watchCmd := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := watchCmd.String("config", "", "Config file to watch (required)")
	verbose := watchCmd.Bool("verbose", false, "Verbose output")

	watchCmd.Usage = func() {
		fmt.Println("👀 Watch Config")
		fmt.Println("===============")
		fmt.Println()
		fmt.Println("Generates once, then again every time the config file is saved.")
		fmt.Println("Stop with Ctrl+C.")
		fmt.Println()
		fmt.Println("Options:")
		watchCmd.PrintDefaults()
	}

	if err := watchCmd.Parse(args); err != nil {
		os.Exit(1)
	}
	if *configPath == "" {
		watchCmd.Usage()
		fail("-config is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	regenerate := func(ctx context.Context) error {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		_, err = generate(ctx, cfg, *verbose)
		return err
	}

	if err := regenerate(ctx); err != nil {
		fmt.Printf("⚠️  %v\n", err)
	}

	w, err := watch.New(watch.Config{
		Path:     *configPath,
		OnChange: regenerate,
		OnError: func(err error) {
			fmt.Printf("⚠️  %v\n", err)
		},
	})
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("👀 Watching %s\n", *configPath)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fail("%v", err)
	}
	fmt.Printf("👋 Stopped after %d regenerations\n", w.Changes())
}

// ═══════════════════════════════════════════════════════════════════════════
// CONFIG
// ═══════════════════════════════════════════════════════════════════════════

func runConfigCommand(args []string) {
	configCmd := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := configCmd.String("config", "", "Config file to read")
	initPath := configCmd.String("init", "", "Write the default config to this path")
	format := configCmd.String("format", "json", "Print format: json, toml or yaml")

	configCmd.Usage = func() {
		fmt.Println("⚙️  Config")
		fmt.Println("==========")
		fmt.Println()
		fmt.Println("Prints the effective configuration, or writes a default one with -init.")
		fmt.Printf("Per-user config: %s\n", config.DefaultPath())
		fmt.Println()
		fmt.Println("Options:")
		configCmd.PrintDefaults()
	}

	if err := configCmd.Parse(args); err != nil {
		os.Exit(1)
	}

	if *initPath != "" {
		if _, err := os.Stat(*initPath); err == nil {
			fail("%s already exists", *initPath)
		}
		if err := config.SaveConfig(*initPath, config.DefaultConfig()); err != nil {
			fail("%v", err)
		}
		fmt.Printf("✅ Wrote %s\n", *initPath)
		return
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fail("%v", err)
		}
		cfg = loaded
	}

	data, err := cfg.Encode(*format)
	if err != nil {
		fail("%v", err)
	}
	fmt.Print(string(data))
}
