package job

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/provide-io/spp/pkg/codec"
	"github.com/provide-io/spp/pkg/gcode"
)

const (
	backupSuffix     = ".bak"
	outputNameSuffix = ".output_name"
)

// ErrNoBackup is returned by Restore when no backup of the file exists.
var ErrNoBackup = errors.New("❌ no backup found")

// BackupPath returns <path>.bak plus the codec extension.
func BackupPath(path string, c codec.Codec) string {
	return path + backupSuffix + c.Extension()
}

// WriteBackup copies path to its backup through c. The backup is
// complete on disk before it returns.
func WriteBackup(path string, c codec.Codec) (string, error) {
	dst := BackupPath(path, c)
	err := writeVia(dst, 0o644, func(w io.Writer) error {
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		return c.Encode(src, w)
	})
	if err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	return dst, nil
}

// FindBackup returns the most recent backup of path, whatever codec wrote it.
func FindBackup(path string) (string, error) {
	type found struct {
		path string
		mod  int64
	}
	var backups []found
	for _, name := range codec.Names() {
		c, err := codec.Lookup(name)
		if err != nil {
			continue
		}
		candidate := BackupPath(path, c)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			backups = append(backups, found{candidate, info.ModTime().UnixNano()})
		}
	}
	if len(backups) == 0 {
		return "", fmt.Errorf("%w for %s", ErrNoBackup, path)
	}
	sort.SliceStable(backups, func(i, j int) bool { return backups[i].mod > backups[j].mod })
	return backups[0].path, nil
}

// Restore decodes the newest backup of path over path.
func Restore(path string) (string, error) {
	backup, err := FindBackup(path)
	if err != nil {
		return "", err
	}
	c := codec.ForPath(backup)
	err = writeVia(path, 0o644, func(w io.Writer) error {
		src, err := os.Open(backup)
		if err != nil {
			return err
		}
		defer src.Close()
		return c.Decode(src, w)
	})
	if err != nil {
		return "", fmt.Errorf("restoring %s: %w", backup, err)
	}
	return backup, nil
}

// WriteAtomic writes doc to a temp file beside path and renames it over
// path. The original is untouched if anything fails.
func WriteAtomic(path string, doc *gcode.Document, perm os.FileMode) (int64, error) {
	var n int64
	err := writeVia(path, perm, func(w io.Writer) error {
		var err error
		n, err = doc.WriteTo(w)
		return err
	})
	if err != nil {
		return n, fmt.Errorf("writing output: %w", err)
	}
	return n, nil
}

// NumberFile renames path to <counter>_<name> in the same directory.
func NumberFile(path, counter string) (string, error) {
	dst := filepath.Join(filepath.Dir(path), counter+"_"+filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		return "", fmt.Errorf("numbering output: %w", err)
	}
	return dst, nil
}

// WriteOutputName writes <path>.output_name holding the name the slicer
// should give the final file. An empty outputName falls back to path.
func WriteOutputName(path, counter, outputName string) (string, error) {
	if outputName == "" {
		outputName = path
	}
	dst := path + outputNameSuffix
	name := counter + "_" + baseName(outputName)
	if err := os.WriteFile(dst, []byte(name), 0o644); err != nil {
		return "", fmt.Errorf("writing output name: %w", err)
	}
	return dst, nil
}

// writeVia streams fill into a temp file in the directory of dst, syncs
// it and renames it to dst.
func writeVia(dst string, perm os.FileMode, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".spp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	bw := bufio.NewWriterSize(tmp, 256*1024)
	if err := fill(bw); err != nil {
		cleanup()
		return err
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// baseName strips both / and \ separators; slicers on Windows pass
// backslash paths regardless of the platform the tool runs on.
func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}
