package main

import (
	"flag"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/kacebover/iconset/generator"
	"github.com/kacebover/iconset/gui/controller"
	"github.com/kacebover/iconset/gui/preview"
	"github.com/kacebover/iconset/renderer"
)

// PreviewGUI represents the preview application
type PreviewGUI struct {
	app    fyne.App
	window fyne.Window
	ctrl   *controller.IconController

	// Inputs
	engineSelect    *widget.Select
	sizesEntry      *widget.Entry
	backgroundEntry *widget.Entry
	foregroundEntry *widget.Entry
	outputEntry     *widget.Entry

	// Buttons
	refreshButton  *widget.Button
	generateButton *widget.Button
	cancelButton   *widget.Button
	bundleButton   *widget.Button
	icoButton      *widget.Button
	sheetButton    *widget.Button

	// Output
	previewArea *fyne.Container
	statusLabel *widget.Label
	progressBar *widget.ProgressBar
}

// NewPreviewGUI creates the preview window in a, driven by ctrl
func NewPreviewGUI(a fyne.App, ctrl *controller.IconController) *PreviewGUI {
	w := a.NewWindow("iconset preview")
	w.Resize(fyne.NewSize(900, 560))

	pg := &PreviewGUI{
		app:    a,
		window: w,
		ctrl:   ctrl,
	}

	pg.buildUI()
	pg.bindController()
	pg.refreshPreview()
	return pg
}

func (pg *PreviewGUI) buildUI() {
	cfg := pg.ctrl.GetConfig()

	// === HEADER ===
	titleText := canvas.NewText("iconset", theme.Color(theme.ColorNameForeground))
	titleText.TextSize = 24
	titleText.TextStyle.Bold = true

	// === CONTROLS ===
	pg.engineSelect = widget.NewSelect(renderer.EngineNames(), func(string) { pg.refreshPreview() })
	pg.engineSelect.SetSelected(cfg.Engine)

	pg.sizesEntry = widget.NewEntry()
	pg.sizesEntry.SetText(formatSizes(cfg.Sizes))

	pg.backgroundEntry = widget.NewEntry()
	pg.backgroundEntry.SetText(cfg.Background)

	pg.foregroundEntry = widget.NewEntry()
	pg.foregroundEntry.SetText(cfg.Foreground)

	pg.outputEntry = widget.NewEntry()
	pg.outputEntry.SetText(cfg.OutputDir)

	form := widget.NewForm(
		widget.NewFormItem("Engine", pg.engineSelect),
		widget.NewFormItem("Sizes", pg.sizesEntry),
		widget.NewFormItem("Background", pg.backgroundEntry),
		widget.NewFormItem("Foreground", pg.foregroundEntry),
		widget.NewFormItem("Output", pg.outputEntry),
	)

	pg.refreshButton = widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), pg.onRefresh)
	pg.generateButton = widget.NewButtonWithIcon("Generate", theme.DocumentSaveIcon(), pg.onGenerate)
	pg.generateButton.Importance = widget.HighImportance

	pg.cancelButton = widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), pg.onCancel)
	pg.cancelButton.Importance = widget.DangerImportance
	pg.cancelButton.Disable()

	pg.bundleButton = widget.NewButton("Bundle ZIP", pg.onBundle)
	pg.icoButton = widget.NewButton("Export ICO", pg.onExportIco)
	pg.sheetButton = widget.NewButton("Export sheet", pg.onExportSheet)
	pg.setExportsEnabled(false)

	pg.statusLabel = widget.NewLabel("Ready")
	pg.progressBar = widget.NewProgressBar()

	controls := container.NewVBox(
		form,
		container.NewGridWithColumns(3, pg.refreshButton, pg.generateButton, pg.cancelButton),
		widget.NewSeparator(),
		container.NewGridWithColumns(3, pg.bundleButton, pg.icoButton, pg.sheetButton),
	)

	// === PREVIEW ===
	pg.previewArea = container.NewHBox()

	content := container.NewBorder(
		container.NewVBox(container.NewPadded(titleText), widget.NewSeparator()),
		container.NewVBox(pg.progressBar, pg.statusLabel),
		container.NewPadded(controls),
		nil,
		container.NewScroll(container.NewCenter(pg.previewArea)),
	)

	pg.window.SetContent(content)
}

// bindController routes controller callbacks onto the UI goroutine
func (pg *PreviewGUI) bindController() {
	pg.ctrl.SetOnProgress(func(done, total int, file generator.File) {
		fyne.Do(func() {
			pg.progressBar.SetValue(float64(done) / float64(total))
		})
	})

	pg.ctrl.SetOnComplete(func(result *generator.Result, err error) {
		fyne.Do(func() {
			pg.generateButton.Enable()
			pg.cancelButton.Disable()
			switch {
			case errors.Is(err, context.Canceled):
				pg.statusLabel.SetText("⏹️ Generation cancelled")
			case err != nil:
				pg.statusLabel.SetText("❌ " + err.Error())
				dialog.ShowError(err, pg.window)
			default:
				pg.statusLabel.SetText(fmt.Sprintf("✅ Generated %d icons in %s", len(result.Files), result.Dir))
			}
			pg.setExportsEnabled(result != nil && len(result.Files) > 0)
		})
	})
}

// applyInputs pushes the form values into the controller config
func (pg *PreviewGUI) applyInputs() error {
	cfg := pg.ctrl.GetConfig()

	sizes, err := parseSizes(pg.sizesEntry.Text)
	if err != nil {
		return err
	}
	cfg.Sizes = sizes
	cfg.Engine = pg.engineSelect.Selected
	cfg.Background = pg.backgroundEntry.Text
	cfg.Foreground = pg.foregroundEntry.Text
	cfg.OutputDir = pg.outputEntry.Text

	return pg.ctrl.UpdateConfig(cfg)
}

func (pg *PreviewGUI) refreshPreview() {
	// Called from the engine select before every widget exists
	if pg.previewArea == nil {
		return
	}

	if err := pg.applyInputs(); err != nil {
		pg.statusLabel.SetText("❌ " + err.Error())
		return
	}

	tiles, err := pg.ctrl.Preview()
	if err != nil {
		pg.statusLabel.SetText("❌ " + err.Error())
		return
	}

	grid := preview.NewGrid(tiles)
	pg.previewArea.Objects = grid.Objects
	pg.previewArea.Refresh()
	pg.statusLabel.SetText(fmt.Sprintf("Previewing %d sizes with %s", len(tiles), pg.engineSelect.Selected))
}

func (pg *PreviewGUI) onRefresh() {
	pg.refreshPreview()
}

func (pg *PreviewGUI) onGenerate() {
	if err := pg.applyInputs(); err != nil {
		dialog.ShowError(err, pg.window)
		return
	}

	pg.progressBar.SetValue(0)
	pg.generateButton.Disable()
	pg.cancelButton.Enable()
	pg.statusLabel.SetText("⏳ Generating...")

	if err := pg.ctrl.StartGenerate(); err != nil {
		pg.generateButton.Enable()
		pg.cancelButton.Disable()
		pg.statusLabel.SetText("❌ " + err.Error())
	}
}

func (pg *PreviewGUI) onCancel() {
	pg.ctrl.CancelGenerate()
	pg.statusLabel.SetText("⏹️ Cancelling...")
}

func (pg *PreviewGUI) onBundle() {
	passwordEntry := widget.NewPasswordEntry()
	passwordEntry.SetPlaceHolder("leave empty for no encryption")

	items := []*widget.FormItem{
		widget.NewFormItem("Password", passwordEntry),
	}

	dialog.ShowForm("Bundle icons", "Create", "Cancel", items, func(confirm bool) {
		if !confirm {
			return
		}
		res, err := pg.ctrl.BundleIcons(passwordEntry.Text, nil)
		if err != nil {
			dialog.ShowError(err, pg.window)
			return
		}
		pg.statusLabel.SetText(fmt.Sprintf("📦 %s (%d files)", res.OutputPath, res.FilesAdded))
	}, pg.window)
}

func (pg *PreviewGUI) onExportIco() {
	path, err := pg.ctrl.ExportIco()
	if err != nil {
		dialog.ShowError(err, pg.window)
		return
	}
	pg.statusLabel.SetText("✅ Wrote " + path)
}

func (pg *PreviewGUI) onExportSheet() {
	path, err := pg.ctrl.ExportSheet()
	if err != nil {
		dialog.ShowError(err, pg.window)
		return
	}
	pg.statusLabel.SetText("✅ Wrote " + path)
}

func (pg *PreviewGUI) setExportsEnabled(enabled bool) {
	for _, b := range []*widget.Button{pg.bundleButton, pg.icoButton, pg.sheetButton} {
		if enabled {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}

// parseSizes reads a comma or space separated size list
func parseSizes(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil, generator.ErrNoSizes
	}

	sizes := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %q", renderer.ErrInvalidSize, f)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func formatSizes(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ", ")
}

func (pg *PreviewGUI) Run() {
	pg.window.ShowAndRun()
}

func main() {
	configPath := flag.String("config", "", "Config file (default: per-user config)")
	flag.Parse()

	ctrl, err := controller.NewIconController(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}

	gui := NewPreviewGUI(app.NewWithID("com.kacebover.iconset"), ctrl)
	gui.Run()
}
