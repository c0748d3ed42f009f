package gen

import (
	"fmt"
	"go/token"
	"path/filepath"

	"github.com/spf13/afero"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteResults writes every successful result next to its template.
// Results that failed to format leave an .unformatted.go sidecar instead,
// noted as an info diagnostic on the result.
func WriteResults(fs afero.Fs, results []*Result) (int, error) {
	written := 0

	for _, res := range results {
		if res == nil {
			continue
		}

		if res.Unformatted != nil {
			if path, err := writeDebugUnformatted(fs, res.OutputPath, res.Unformatted); err == nil && path != "" {
				res.Diagnostics.AddInfo("", "unformatted output kept in "+path, token.Position{Filename: path})
			}
		}

		if !res.OK() {
			continue
		}

		if err := fs.MkdirAll(filepath.Dir(res.OutputPath), dirPerm); err != nil {
			return written, fmt.Errorf("creating output directory: %w", err)
		}

		if err := afero.WriteFile(fs, res.OutputPath, res.Output, filePerm); err != nil {
			return written, fmt.Errorf("writing file %s: %w", res.OutputPath, err)
		}

		written++
	}

	return written, nil
}
