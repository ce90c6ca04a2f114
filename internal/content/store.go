// Package content manages the per-version documentation source trees.
package content

import (
	"io"
	"os"
	"path/filepath"

	verrors "git.home.luguber.info/inful/docvers/internal/errors"
)

// CopyTree recursively copies the directory tree at src to dst, preserving
// file modes. It fails with SourceMissing if src does not exist and with
// DestinationExists if dst is already present; there is no silent overwrite.
func CopyTree(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return verrors.New(verrors.KindSourceMissing, "source directory %s does not exist", src)
		}
		return verrors.Wrap(err, verrors.KindInternal, "stat source %s", src)
	}
	if !srcInfo.IsDir() {
		return verrors.New(verrors.KindSourceMissing, "source %s is not a directory", src)
	}
	if _, err := os.Stat(dst); err == nil {
		return verrors.New(verrors.KindDestinationExists, "destination %s already exists", dst)
	} else if !os.IsNotExist(err) {
		return verrors.Wrap(err, verrors.KindInternal, "stat destination %s", dst)
	}
	return copyDir(src, dst, srcInfo.Mode())
}

func copyDir(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(dst, mode); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			info, err := entry.Info()
			if err != nil {
				return err
			}
			if err := copyDir(srcPath, dstPath, info.Mode()); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = dstFile.Close()
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode())
}

// DeleteTree removes a directory recursively. Deleting a path that does not
// exist is a no-op, so deletion is idempotent.
func DeleteTree(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "delete %s", path)
	}
	return nil
}

// Exists reports whether a directory exists at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
