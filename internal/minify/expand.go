package minify

import (
	"os"
	"path/filepath"
	"strings"

	"imgmin/internal/logging"
)

// Expand turns command-line arguments into an ordered file list. Files are
// kept as given; directories are walked recursively, files of each level
// in lexical order before its sub-directories. When
// outputDir lies inside a walked directory that subtree is skipped so
// earlier results are not minified again.
func Expand(args []string, outputDir string, log *logging.Logger) []Input {
	var outAbs string
	if outputDir != "" {
		if abs, err := filepath.Abs(outputDir); err == nil {
			outAbs = abs
		}
	}

	seen := make(map[string]bool)
	var inputs []Input
	add := func(path, rel string) {
		if seen[path] {
			return
		}
		seen[path] = true
		inputs = append(inputs, Input{Path: path, Rel: rel})
	}

	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			log.Print("'%s' is not a valid file or directory.", arg)
			continue
		}
		info, err := os.Stat(abs)
		switch {
		case err != nil:
			log.Print("'%s' is not a valid file or directory.", arg)
		case info.Mode().IsRegular():
			add(abs, filepath.Base(abs))
		case info.IsDir():
			walk(abs, outAbs, log, add)
		default:
			log.Print("'%s' is not a valid file or directory.", arg)
		}
	}
	return inputs
}

// walk adds the regular files of dir in lexical order, then descends into
// its sub-directories in lexical order.
func walk(root, outAbs string, log *logging.Logger, add func(path, rel string)) {
	var visit func(dir string)
	visit = func(dir string) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Warn("cannot read '%s': %v", dir, err)
		}
		var subdirs []string
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			switch {
			case e.IsDir():
				if outAbs == "" || !isWithin(path, outAbs) {
					subdirs = append(subdirs, path)
				}
			case e.Type().IsRegular():
				rel, relErr := filepath.Rel(root, path)
				if relErr != nil {
					rel = filepath.Base(path)
				}
				add(path, rel)
			}
		}
		for _, sub := range subdirs {
			visit(sub)
		}
	}
	visit(root)
}

// isWithin reports whether path is root or below it.
func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
