package gen

import (
	"strings"

	"github.com/spf13/afero"
)

// writeDebugUnformatted writes unformatted code to a sidecar file next to the
// intended output and returns its path. It is best-effort and never fails
// the pass.
func writeDebugUnformatted(fs afero.Fs, outputPath string, content []byte) (string, error) {
	if outputPath == "" {
		return "", nil
	}

	// Keep a .go extension for syntax highlighting without colliding with real
	// output; the ignore constraint keeps the package building.
	debugPath := strings.TrimSuffix(outputPath, ".go") + ".unformatted.go"
	content = append([]byte("//go:build ignore\n\n"), content...)

	return debugPath, afero.WriteFile(fs, debugPath, content, filePerm)
}
