// Package archive locates and reads install-agent log artifacts.
//
// Captures land under a log root as plain .log files, gzip or zip
// archives, or previously extracted replay lists (.json). LocateNewest
// finds the most recent artifact for a product; ReadLines turns a raw
// artifact back into log lines for extraction.
package archive

import (
	"archive/zip"
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotFound means no log artifact exists for the requested product.
var ErrNotFound = errors.New("no log artifact found")

// Artifact extensions we recognize.
const (
	extLog  = ".log"
	extGzip = ".gz"
	extZip  = ".zip"
	extJSON = ".json"
)

// Kind classifies an artifact.
type Kind int

const (
	// KindRaw is a log needing extraction (.log, .gz, .zip).
	KindRaw Kind = iota
	// KindCached is an already-extracted replay list (.json).
	KindCached
)

// Artifact is a located log artifact.
type Artifact struct {
	Path string
	Kind Kind
}

// LocateNewest finds the most recent log artifact for a product under
// root, searching subdirectories. Recency is by modification time.
// Returns ErrNotFound (wrapped with the product name) when nothing
// matches.
func LocateNewest(root, product string) (Artifact, error) {
	pattern := filepath.Join(root, "**", "*"+product+"*")
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	type candidate struct {
		path    string
		modTime int64
	}
	var candidates []candidate
	for _, m := range matches {
		if !recognized(m) {
			continue
		}
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		candidates = append(candidates, candidate{path: m, modTime: info.ModTime().UnixNano()})
	}

	if len(candidates) == 0 {
		return Artifact{}, fmt.Errorf("product %q under %s: %w", product, root, ErrNotFound)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].modTime != candidates[j].modTime {
			return candidates[i].modTime > candidates[j].modTime
		}
		return candidates[i].path < candidates[j].path
	})

	newest := candidates[0].path
	kind := KindRaw
	if strings.EqualFold(filepath.Ext(newest), extJSON) {
		kind = KindCached
	}
	return Artifact{Path: newest, Kind: kind}, nil
}

func recognized(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extLog, extGzip, extZip, extJSON:
		return true
	default:
		return false
	}
}

// ReadLines reads a raw artifact into log lines. Gzip and zip archives are
// decompressed in place; zip archives may hold several log members, which
// are read in name order.
func ReadLines(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case extGzip:
		return readGzipLines(path)
	case extZip:
		return readZipLines(path)
	default:
		return readPlainLines(path)
	}
}

func readPlainLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return scanLines(f, path)
}

func readGzipLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	defer zr.Close()
	return scanLines(zr, path)
}

func readZipLines(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer zr.Close()

	var members []*zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), extLog) {
			members = append(members, f)
		}
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%s holds no .log members", path)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })

	var lines []string
	for _, m := range members {
		rc, err := m.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in %s: %w", m.Name, path, err)
		}
		memberLines, err := scanLines(rc, m.Name)
		rc.Close()
		if err != nil {
			return nil, err
		}
		lines = append(lines, memberLines...)
	}
	return lines, nil
}

func scanLines(r io.Reader, name string) ([]string, error) {
	scanner := bufio.NewScanner(r)
	// Access-log lines can exceed the default scanner limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return lines, nil
}
