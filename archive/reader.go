package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/eak1mov/go-fogmap/fog"
)

// ErrEmptyArchive marks a readable archive or folder that contains no tile
// files at all, distinct from format errors inside individual files.
var ErrEmptyArchive = errors.New("no tile files found")

const readConcurrency = 8

// ReadArchive loads tile files from either a ZIP archive or a plain
// directory. Filenames are reduced to their basename: any directory prefix
// (Sync/ included) is stripped. Files are returned sorted by name so the
// result is deterministic.
func ReadArchive(archivePath string) ([]fog.TileFile, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return readDir(archivePath)
	}
	return readZip(archivePath)
}

func readZip(archivePath string) ([]fog.TileFile, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	var files []fog.TileFile
	for _, entry := range r.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := path.Base(entry.Name)
		if strings.HasPrefix(name, ".") {
			continue
		}
		f, err := entry.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, fog.TileFile{Name: name, Data: data})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrEmptyArchive, archivePath)
	}
	sortFiles(files)
	return files, nil
}

func readDir(dirPath string) ([]fog.TileFile, error) {
	var paths []string
	err := filepath.WalkDir(dirPath, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		paths = append(paths, filePath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrEmptyArchive, dirPath)
	}

	files := make([]fog.TileFile, len(paths))
	var group errgroup.Group
	group.SetLimit(readConcurrency)
	for i, filePath := range paths {
		group.Go(func() error {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return err
			}
			files[i] = fog.TileFile{Name: filepath.Base(filePath), Data: data}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	sortFiles(files)
	return files, nil
}

func sortFiles(files []fog.TileFile) {
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
}
