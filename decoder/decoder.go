// Package decoder extracts any supported archive into a directory,
// optionally verifying a sha256 digest first. The set of produced
// files is determined by walking the output directory afterward, never
// trusted from container metadata.
package decoder

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"swissarchive/checksum"
	"swissarchive/driver"
	"swissarchive/sevenz"
	"swissarchive/task"
)

// DigestMismatchError reports that the archive's content hash differs
// from the caller-supplied expectation. It is returned before any
// extraction side effect.
type DigestMismatchError struct {
	Expected string
	Actual   string
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("digest mismatch: expected: %s actual: %s", e.Expected, e.Actual)
}

type Decoder struct {
	format          driver.Format
	inputFilePath   string
	outputDirectory string
	expectedDigest  string
	readerSize      int64

	input     *os.File    // nil only after Extract
	zipReader *zip.Reader // zip only

	extracted bool
}

// Extracted holds the set of archive-relative paths (directories
// excluded) present under the output directory after extraction.
type Extracted struct {
	Files map[string]bool
}

// New resolves the format from inputFilePath's suffix and opens the
// input. expectedDigest may be empty to skip verification. No archive
// content is read yet.
func New(inputFilePath string, expectedDigest string, outputDirectory string) (*Decoder, error) {
	format, err := driver.FromFilename(inputFilePath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(inputFilePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", inputFilePath, err)
	}

	input, err := os.Open(inputFilePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", inputFilePath, err)
	}

	d := &Decoder{
		format:          format,
		inputFilePath:   inputFilePath,
		outputDirectory: outputDirectory,
		expectedDigest:  expectedDigest,
		readerSize:      info.Size(),
		input:           input,
	}

	if format == driver.FORMAT_ZIP {
		zipReader, err := zip.NewReader(input, info.Size())
		if err != nil {
			input.Close()
			return nil, fmt.Errorf("open zip failed: %s: %w", inputFilePath, err)
		}
		d.zipReader = zipReader
	}
	return d, nil
}

// Format returns the resolved input format.
func (d *Decoder) Format() driver.Format {
	return d.format
}

// Extract verifies the digest (if one was supplied), materializes the
// archive under the output directory and returns the relative paths
// found there afterward. The decoder is consumed: no further calls are
// valid afterward.
func (d *Decoder) Extract(updater driver.Updater) (*Extracted, error) {
	if d.extracted {
		return nil, fmt.Errorf("decoder for %s already extracted", d.inputFilePath)
	}
	d.extracted = true
	defer func() {
		if d.input != nil {
			d.input.Close()
			d.input = nil
		}
	}()

	// digest check happens strictly before any extraction side effect
	if d.expectedDigest != "" {
		actual, err := d.verifyDigest(updater)
		if err != nil {
			return nil, err
		}
		if actual != d.expectedDigest {
			return nil, &DigestMismatchError{Expected: d.expectedDigest, Actual: actual}
		}
	}

	if err := os.MkdirAll(d.outputDirectory, os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating %s: %w", d.outputDirectory, err)
	}

	var tarBytes []byte
	switch d.format {
	case driver.FORMAT_ZIP:
		if err := d.extractZip(updater); err != nil {
			return nil, err
		}
	case driver.FORMAT_SEVENZ:
		contents, err := d.extractSevenZ(updater)
		if err != nil {
			return nil, err
		}
		tarBytes = contents
	default:
		decompressor, err := d.newDecompressor()
		if err != nil {
			return nil, err
		}
		contents, err := d.decompressToTarBytes(decompressor, updater)
		if err != nil {
			return nil, err
		}
		tarBytes = contents
	}

	// all formats except zip (which self-extracts) produce tar bytes
	if tarBytes != nil {
		if err := d.unpackTarBytes(tarBytes, updater); err != nil {
			return nil, err
		}
	}

	files, err := d.scanOutputDirectory()
	if err != nil {
		return nil, err
	}
	return &Extracted{Files: files}, nil
}

func (d *Decoder) verifyDigest(updater driver.Updater) (string, error) {
	updater.Notify(driver.UpdateStatus{
		Brief:  driver.Str("Verifying digest"),
		Detail: driver.Str(filepath.Base(d.inputFilePath)),
	})

	inputFilePath := d.inputFilePath
	handle := task.Run(func() (string, error) {
		return checksum.Sha256File(inputFilePath)
	})
	return task.Await(handle, task.PollInterval, func() {
		updater.Notify(driver.UpdateStatus{Increment: driver.Count(1)})
	})
}

func (d *Decoder) newDecompressor() (io.Reader, error) {
	switch d.format {
	case driver.FORMAT_GZIP:
		decompressor, err := gzip.NewReader(d.input)
		if err != nil {
			return nil, fmt.Errorf("reading gzip stream of %s: %w", d.inputFilePath, err)
		}
		return decompressor, nil
	case driver.FORMAT_BZIP2:
		decompressor, err := bzip2.NewReader(d.input, nil)
		if err != nil {
			return nil, fmt.Errorf("reading bzip2 stream of %s: %w", d.inputFilePath, err)
		}
		return decompressor, nil
	case driver.FORMAT_XZ:
		decompressor, err := xz.NewReader(d.input)
		if err != nil {
			return nil, fmt.Errorf("reading xz stream of %s: %w", d.inputFilePath, err)
		}
		return decompressor, nil
	default:
		return nil, fmt.Errorf("%w: no stream decompressor for %s", driver.ErrUnsupportedFormat, d.format)
	}
}

// decompressToTarBytes drains the decompressor into memory, sized by
// the input file length as a hint, ticking once per buffer read.
func (d *Decoder) decompressToTarBytes(decompressor io.Reader, updater driver.Updater) ([]byte, error) {
	updater.Notify(driver.UpdateStatus{
		Brief:  driver.Str(fmt.Sprintf("Extracting (%s)", d.format.Extension())),
		Detail: driver.Str("creating tar as binary blob"),
		Total:  driver.Count(200),
	})

	result := make([]byte, 0, d.readerSize)
	buffer := make([]byte, 8192)
	for {
		bytesRead, err := decompressor.Read(buffer)
		if bytesRead > 0 {
			result = append(result, buffer[:bytesRead]...)
			updater.Notify(driver.UpdateStatus{Increment: driver.Count(1)})
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", d.inputFilePath, err)
		}
	}
	return result, nil
}

// extractZip runs two passes. The manual per-entry pass drives
// per-file progress detail; the bulk pass afterward materializes
// directory entries and permissions the manual pass skipped.
func (d *Decoder) extractZip(updater driver.Updater) error {
	updater.Notify(driver.UpdateStatus{
		Brief: driver.Str("Extracting (zip)"),
		Total: driver.Count(uint64(len(d.zipReader.File))),
	})

	for _, entry := range d.zipReader.File {
		updater.Notify(driver.UpdateStatus{
			Detail:    driver.Str(entry.Name),
			Increment: driver.Count(1),
		})
		if !entry.Mode().IsRegular() {
			continue
		}
		destinationPath, err := containedPath(d.outputDirectory, entry.Name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(destinationPath), os.ModePerm); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(destinationPath), err)
		}
		if err := writeZipEntry(entry, destinationPath); err != nil {
			return err
		}
	}

	return d.bulkExtractZip()
}

func writeZipEntry(entry *zip.File, destinationPath string) error {
	source, err := entry.Open()
	if err != nil {
		return fmt.Errorf("reading zip entry %s: %w", entry.Name, err)
	}
	defer source.Close()

	destination, err := os.Create(destinationPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destinationPath, err)
	}
	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return fmt.Errorf("writing %s: %w", destinationPath, err)
	}
	if err := destination.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", destinationPath, err)
	}
	return nil
}

// bulkExtractZip replays every entry including directories, restoring
// permission bits recorded in the archive.
func (d *Decoder) bulkExtractZip() error {
	for _, entry := range d.zipReader.File {
		target, err := containedPath(d.outputDirectory, entry.Name)
		if err != nil {
			return err
		}
		mode := entry.Mode()
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, mode.Perm()|0o700); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}
		if !mode.IsRegular() {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		if err := writeZipEntry(entry, target); err != nil {
			return err
		}
		if err := os.Chmod(target, mode.Perm()); err != nil {
			return fmt.Errorf("restoring permissions of %s: %w", target, err)
		}
	}
	return nil
}

// extractSevenZ runs the external tool against the output directory on
// a background task. The tool materializes the archive's inner tar
// file there; its bytes are read back and the file is removed.
func (d *Decoder) extractSevenZ(updater driver.Updater) ([]byte, error) {
	updater.Notify(driver.UpdateStatus{
		Brief:  driver.Str(fmt.Sprintf("Extracting (%s)", d.format.Extension())),
		Detail: driver.Str("creating tar as binary blob"),
		Total:  driver.Count(200),
	})

	// the tool reopens the archive by path
	d.input.Close()
	d.input = nil

	inputFilePath := d.inputFilePath
	outputDirectory := d.outputDirectory
	handle := task.Run(func() ([]byte, error) {
		if err := sevenz.Extract(inputFilePath, outputDirectory); err != nil {
			return nil, err
		}
		temporaryTarPath := filepath.Join(outputDirectory, driver.SevenZTarFilename)
		contents, err := os.ReadFile(temporaryTarPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", temporaryTarPath, err)
		}
		if err := os.Remove(temporaryTarPath); err != nil {
			return nil, fmt.Errorf("removing %s: %w", temporaryTarPath, err)
		}
		return contents, nil
	})

	return task.Await(handle, task.PollInterval, func() {
		updater.Notify(driver.UpdateStatus{Increment: driver.Count(1)})
	})
}

// unpackTarBytes unpacks an in-memory tar stream onto the output
// directory on a background task.
func (d *Decoder) unpackTarBytes(tarBytes []byte, updater driver.Updater) error {
	updater.Notify(driver.UpdateStatus{
		Brief: driver.Str("Unpacking (tar)"),
	})

	outputDirectory := d.outputDirectory
	handle := task.Run(func() (struct{}, error) {
		return struct{}{}, unpackTar(tarBytes, outputDirectory)
	})
	_, err := task.Await(handle, task.PollInterval, func() {
		updater.Notify(driver.UpdateStatus{Increment: driver.Count(1)})
	})
	return err
}

func unpackTar(tarBytes []byte, outputDirectory string) error {
	reader := tar.NewReader(bytes.NewReader(tarBytes))
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar stream: %w", err)
		}

		target, err := containedPath(outputDirectory, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, fs.FileMode(header.Mode).Perm()|0o700); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}

		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
			}
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("replacing %s: %w", target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("creating symlink %s: %w", target, err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
			}
			file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fs.FileMode(header.Mode).Perm())
			if err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			if _, err := io.Copy(file, reader); err != nil {
				file.Close()
				return fmt.Errorf("writing %s: %w", target, err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", target, err)
			}

		default:
			// hard links, devices and the like have no business in
			// archives this system produced
			continue
		}
	}
	return nil
}

// containedPath joins an archive entry name onto the output directory,
// rejecting entries that would escape it. Rejection covers both the
// lexical form (".." components) and writes routed through a symlink an
// earlier entry planted inside the output directory.
func containedPath(outputDirectory string, entryName string) (string, error) {
	target := filepath.Join(outputDirectory, filepath.FromSlash(entryName))
	base := filepath.Clean(outputDirectory)
	if target != base && !strings.HasPrefix(target, base+string(filepath.Separator)) {
		return "", fmt.Errorf("insecure archive entry path %q escapes %s", entryName, outputDirectory)
	}
	if err := rejectSymlinkAncestors(base, target); err != nil {
		return "", fmt.Errorf("insecure archive entry path %q: %w", entryName, err)
	}
	return target, nil
}

// rejectSymlinkAncestors fails when any already-existing path component
// between base (exclusive) and target's parent (inclusive) is a
// symlink. A symlinked parent would redirect the write outside the
// output directory even though the joined path looks contained.
func rejectSymlinkAncestors(base string, target string) error {
	parent := filepath.Dir(target)
	if parent == base || len(parent) < len(base) {
		return nil
	}
	relative, err := filepath.Rel(base, parent)
	if err != nil {
		return fmt.Errorf("relativizing %s: %w", parent, err)
	}
	current := base
	for _, component := range strings.Split(relative, string(filepath.Separator)) {
		current = filepath.Join(current, component)
		info, err := os.Lstat(current)
		if os.IsNotExist(err) {
			// nothing past this point exists yet, nothing to follow
			return nil
		}
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", current, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("parent component %s is a symlink", current)
		}
	}
	return nil
}

// scanOutputDirectory walks the whole tree and records every
// non-directory entry relative to the output directory. This set, not
// container metadata, is the authoritative extraction result.
func (d *Decoder) scanOutputDirectory() (map[string]bool, error) {
	files := map[string]bool{}
	err := filepath.WalkDir(d.outputDirectory, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walking %s: %w", path, walkErr)
		}
		if entry.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(d.outputDirectory, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		files[filepath.ToSlash(relPath)] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
