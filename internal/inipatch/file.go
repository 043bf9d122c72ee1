package inipatch

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result describes a completed patch.
type Result struct {
	Path       string `json:"path"`
	BackupPath string `json:"backupPath"`
	Lines      int    `json:"lines"`
	Changed    int    `json:"changed"`
}

// document is a file split into lines plus what is needed to write it back
// the same way. eols[i] is the terminator that followed lines[i] and is empty
// for a final line with no newline.
type document struct {
	lines []string
	eols  []string
	bom   bool
}

func parse(data []byte) document {
	var doc document
	if bytes.HasPrefix(data, utf8BOM) {
		doc.bom = true
		data = data[len(utf8BOM):]
	}
	text := string(data)
	if text == "" {
		return doc
	}
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for _, part := range parts {
		line, eol := part, ""
		switch {
		case strings.HasSuffix(part, "\r\n"):
			line, eol = part[:len(part)-2], "\r\n"
		case strings.HasSuffix(part, "\n"):
			line, eol = part[:len(part)-1], "\n"
		}
		doc.lines = append(doc.lines, line)
		doc.eols = append(doc.eols, eol)
	}
	return doc
}

// bytes writes lines back, each with the terminator its original line had.
func (d document) bytes(lines []string) []byte {
	var b bytes.Buffer
	if d.bom {
		b.Write(utf8BOM)
	}
	for i, line := range lines {
		b.WriteString(line)
		if i < len(d.eols) {
			b.WriteString(d.eols[i])
		}
	}
	return b.Bytes()
}

// ReadLines returns the lines of the file at path.
func ReadLines(path string) ([]string, error) {
	data, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	return parse(data).lines, nil
}

// Preview returns how many lines of the file at path the rules would change.
func Preview(path string, rules []Rule) (changed int, total int, err error) {
	lines, err := ReadLines(path)
	if err != nil {
		return 0, 0, err
	}
	return countChanged(lines, Apply(lines, rules)), len(lines), nil
}

// PatchFile rewrites the file at path with rules. The original bytes are
// written to a uniquely named backup beside it before the file is touched.
func PatchFile(path string, rules []Rule) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, notFound(path, err)
	}
	data, err := readConfig(path)
	if err != nil {
		return Result{}, err
	}

	doc := parse(data)
	out := Apply(doc.lines, rules)

	backup := BackupPath(path, uuid.NewString())
	if err := writeSynced(backup, data, info.Mode().Perm()); err != nil {
		return Result{}, fmt.Errorf("writing backup %s: %w", backup, err)
	}

	if err := os.WriteFile(path, doc.bytes(out), info.Mode().Perm()); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", path, err)
	}

	return Result{
		Path:       path,
		BackupPath: backup,
		Lines:      len(out),
		Changed:    countChanged(doc.lines, out),
	}, nil
}

// Restore copies backupPath over path.
func Restore(backupPath, path string) error {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}
	return nil
}

// BackupPath returns <dir>/<stem>-<id><ext> for path.
func BackupPath(path, id string) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"-"+id+ext)
}

func readConfig(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	return data, nil
}

func notFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file not found: %s: %w", path, err)
	}
	return fmt.Errorf("reading %s: %w", path, err)
}

// writeSynced creates path exclusively and flushes it to disk before
// returning.
func writeSynced(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func countChanged(before, after []string) int {
	n := 0
	for i := range before {
		if before[i] != after[i] {
			n++
		}
	}
	return n
}
