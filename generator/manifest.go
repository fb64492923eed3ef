package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
)

// Manifest is the icon fragment of a browser extension manifest.json
type Manifest struct {
	Icons  map[string]string `json:"icons"`
	Action ManifestAction    `json:"action"`
}

// ManifestAction holds the toolbar button icons
type ManifestAction struct {
	DefaultIcon map[string]string `json:"default_icon"`
}

// NewManifest maps every written size to prefix/name. prefix is the icon
// directory as seen from the extension root, always joined with "/".
func NewManifest(files []File, prefix string) Manifest {
	icons := make(map[string]string, len(files))
	for _, f := range files {
		icons[strconv.Itoa(f.Size)] = path.Join(prefix, f.Name)
	}

	action := make(map[string]string, len(icons))
	for k, v := range icons {
		action[k] = v
	}

	return Manifest{
		Icons:  icons,
		Action: ManifestAction{DefaultIcon: action},
	}
}

// WriteManifest writes the manifest fragment for result as indented JSON
func WriteManifest(filePath string, result *Result, prefix string) error {
	if result == nil || len(result.Files) == 0 {
		return fmt.Errorf("manifest: %w", ErrNoSizes)
	}

	data, err := json.MarshalIndent(NewManifest(result.Files, prefix), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return os.WriteFile(filePath, data, 0644)
}
