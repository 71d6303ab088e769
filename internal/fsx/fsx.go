// Package fsx holds the file operations the minify pipeline relies on:
// byte-for-byte copies, existence-tolerant removal and a move that survives
// the system temp directory living on another filesystem.
package fsx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Replaceable so tests can simulate EXDEV and permission failures.
var renameFunc = os.Rename

// CrossDeviceError reports a rename that failed because source and
// destination are on different filesystems.
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cross-device move %q -> %q: %v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err is a CrossDeviceError.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Rename wraps os.Rename and tags EXDEV failures as CrossDeviceError.
func Rename(src, dst string) error {
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

// CopyFile duplicates src into dst, truncating dst if it exists. dst takes
// src's permission bits even when it already existed. The copy is synced
// before returning so a later size comparison sees the final length.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		_ = out.Close()
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// RemoveIfExists deletes path and treats a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether path names an existing filesystem entry.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Move relocates src to dst. A plain rename is tried first; when the two
// paths live on different filesystems the data is copied into a temp file
// next to dst and renamed into place, so dst never holds a partial file.
// Either way dst ends up with src's permission bits.
func Move(src, dst string) error {
	err := Rename(src, dst)
	if err == nil || !IsCrossDevice(err) {
		return err
	}

	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpName) }()

	if err := CopyFile(src, tmpName); err != nil {
		return err
	}
	if err := renameFunc(tmpName, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
