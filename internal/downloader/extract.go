package downloader

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/xi2/xz"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
)

// maxMemberDepth caps how deep an archive member path may nest.
const maxMemberDepth = 15

// ExtractArchive unpacks an archive into a fresh temp directory and
// returns its path. The caller removes the directory when done. Unsafe
// member paths are skipped with a warning, never fatal.
func ExtractArchive(archivePath, ext string) (string, error) {
	destDir, err := os.MkdirTemp("", "fontman-extract-")
	if err != nil {
		return "", fmt.Errorf("failed to create extract directory: %w", err)
	}

	switch ext {
	case ".zip":
		err = extractZip(archivePath, destDir)
	case ".tar.gz", ".tgz":
		err = extractTarGz(archivePath, destDir)
	case ".tar.xz":
		err = extractTarXz(archivePath, destDir)
	default:
		err = fmt.Errorf("unsupported archive extension %q", ext)
	}
	if err != nil {
		os.RemoveAll(destDir)
		return "", err
	}
	return destDir, nil
}

// safeMemberPath validates an archive member name and resolves it under
// destDir. ok is false for absolute paths, traversal, or excessive depth.
func safeMemberPath(destDir, name string) (string, bool) {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", false
	}
	cleaned := filepath.Clean(filepath.FromSlash(name))
	for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
		if part == ".." {
			return "", false
		}
	}
	if strings.Count(cleaned, string(filepath.Separator)) >= maxMemberDepth {
		return "", false
	}
	dest := filepath.Join(destDir, cleaned)
	if !strings.HasPrefix(dest, filepath.Clean(destDir)+string(filepath.Separator)) {
		return "", false
	}
	return dest, true
}

func writeMember(dest string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}
	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	_, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if copyErr != nil {
		return fmt.Errorf("failed to write %s: %w", dest, copyErr)
	}
	return closeErr
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip %s: %w", archivePath, err)
	}
	defer reader.Close()

	for _, member := range reader.File {
		if member.FileInfo().IsDir() {
			continue
		}
		dest, ok := safeMemberPath(destDir, member.Name)
		if !ok {
			logger.Warningf("Skipping unsafe archive member: %s", member.Name)
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return fmt.Errorf("failed to read zip member %s: %w", member.Name, err)
		}
		err = writeMember(dest, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTarStream(tr *tar.Reader, destDir string) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar stream: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		dest, ok := safeMemberPath(destDir, header.Name)
		if !ok {
			logger.Warningf("Skipping unsafe archive member: %s", header.Name)
			continue
		}
		if err := writeMember(dest, tr); err != nil {
			return err
		}
	}
}

func extractTarGz(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to read gzip stream from %s: %w", archivePath, err)
	}
	defer gz.Close()

	return extractTarStream(tar.NewReader(gz), destDir)
}

func extractTarXz(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer file.Close()

	xzr, err := xz.NewReader(file, 0)
	if err != nil {
		return fmt.Errorf("failed to read xz stream from %s: %w", archivePath, err)
	}

	return extractTarStream(tar.NewReader(xzr), destDir)
}
