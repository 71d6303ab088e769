package minify

import (
	"errors"
	"path/filepath"
	"strings"

	"imgmin/internal/config"
	"imgmin/pkg/imgutil"
)

// ErrSameAsInput means the computed output path would overwrite the input.
var ErrSameAsInput = errors.New("output path resolves to the input path")

// workDirName is the sub-directory of the temp dir holding working copies.
const workDirName = "imgmin"

// OutputPath computes <dir>/<prefix><name><suffix>.<ext> for in. The
// extension always follows the format, so a JPEG named ".png" gets ".jpg".
func OutputPath(in Input, format imgutil.Format, cfg config.Config) (string, error) {
	dir := filepath.Dir(in.Path)
	if cfg.Output != "" {
		dir = cfg.Output
		if rel := filepath.Dir(in.Rel); in.Rel != "" && rel != "." {
			dir = filepath.Join(dir, rel)
		}
	}

	base := filepath.Base(in.Path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	out := filepath.Join(dir, cfg.Prefix+name+cfg.Suffix+"."+format.Ext())

	absOut, err := filepath.Abs(out)
	if err != nil {
		return "", err
	}
	absIn, err := filepath.Abs(in.Path)
	if err != nil {
		return "", err
	}
	if absOut == absIn {
		return "", ErrSameAsInput
	}
	return absOut, nil
}

// WorkingPath is where the working copy for output lives while the chain
// runs.
func WorkingPath(tempDir, output string) string {
	return filepath.Join(tempDir, workDirName, filepath.Base(output))
}
