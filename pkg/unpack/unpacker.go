package unpack

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/gearbox/pkg/protogen"
)

// UnpackedDependencies pairs an extraction directory with the set of
// files extracted into it
type UnpackedDependencies struct {
	Dir   string
	Files []string
}

// Unpacker extracts .proto entries from dependency archives
type Unpacker struct {
	log *logrus.Logger
}

// NewUnpacker creates a new unpacker
func NewUnpacker(log *logrus.Logger) *Unpacker {
	if log == nil {
		log = logrus.New()
	}
	return &Unpacker{log: log}
}

// Extract pulls every .proto entry out of the given archives into
// targetDir, creating it if absent. Pre-existing files at the same path
// are overwritten. Returns the files actually extracted, sorted by path.
// An unreadable or corrupt archive aborts extraction with a fatal error.
func (u *Unpacker) Extract(archives []string, targetDir string) (*UnpackedDependencies, error) {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}

	var extracted []string
	for _, archive := range archives {
		files, err := u.extractArchive(archive, targetDir)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			u.log.WithField("archive", archive).Debug("archive contains no proto entries")
		}
		extracted = append(extracted, files...)
	}

	sort.Strings(extracted)
	return &UnpackedDependencies{Dir: targetDir, Files: extracted}, nil
}

// extractArchive dispatches on archive type. Jars are plain zip files.
func (u *Unpacker) extractArchive(archivePath, targetDir string) ([]string, error) {
	if strings.HasSuffix(archivePath, ".tar.gz") || strings.HasSuffix(archivePath, ".tgz") {
		return u.extractTarGz(archivePath, targetDir)
	}
	return u.extractZip(archivePath, targetDir)
}

// extractZip extracts .proto entries from a zip or jar archive
func (u *Unpacker) extractZip(archivePath, targetDir string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, archivePath, err)
	}
	defer r.Close()

	var files []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, protogen.ProtoExtension) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, archivePath, err)
		}

		dest, err := u.writeEntry(targetDir, f.Name, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, dest)
	}

	return files, nil
}

// extractTarGz extracts .proto entries from a gzipped tarball
func (u *Unpacker) extractTarGz(archivePath, targetDir string) ([]string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, archivePath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, archivePath, err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)

	var files []string
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, archivePath, err)
		}
		if header.Typeflag != tar.TypeReg || !strings.HasSuffix(header.Name, protogen.ProtoExtension) {
			continue
		}

		dest, err := u.writeEntry(targetDir, header.Name, tarReader)
		if err != nil {
			return nil, err
		}
		files = append(files, dest)
	}

	return files, nil
}

// writeEntry writes one archive entry under targetDir, preserving the
// entry's relative path and rejecting paths that escape the directory
func (u *Unpacker) writeEntry(targetDir, entryName string, r io.Reader) (string, error) {
	dest := filepath.Join(targetDir, filepath.FromSlash(entryName))

	rel, err := filepath.Rel(targetDir, dest)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntryPath, entryName)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create entry directory: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create extracted file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return "", fmt.Errorf("failed to write extracted file: %w", err)
	}

	return dest, nil
}
