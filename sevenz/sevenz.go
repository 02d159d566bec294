// Package sevenz adapts the external 7-Zip command line tool. Unlike
// the stream codecs, 7z only works disk-to-disk: compression takes an
// input path and decompression writes into a directory, so calls here
// are expected to run under the task runner.
package sevenz

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// candidate binary names, preferred order
var binaryNames = []string{"7zz", "7z", "7za"}

func lookupBinary() (string, error) {
	for _, name := range binaryNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", errors.New("no 7z binary found in PATH (tried 7zz, 7z, 7za)")
}

// Available reports whether a 7z binary can be found in PATH.
func Available() bool {
	_, err := lookupBinary()
	return err == nil
}

// Compress archives the file at inputPath into a new 7z container at
// archivePath. The tool runs from inputPath's directory and receives
// only the bare filename, so the stored entry name is always the last
// path component. Passing a relative path instead would bake its
// directory prefix into the archive.
func Compress(inputPath string, archivePath string) error {
	binary, err := lookupBinary()
	if err != nil {
		return err
	}
	absoluteArchivePath, err := filepath.Abs(archivePath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", archivePath, err)
	}
	return run(binary, filepath.Dir(inputPath),
		fmt.Sprintf("7z compress %s -> %s", inputPath, archivePath),
		"a", "-t7z", "-y", absoluteArchivePath, filepath.Base(inputPath))
}

// Extract unpacks every entry of the 7z container at archivePath into
// outputDirectory, creating it if needed.
func Extract(archivePath string, outputDirectory string) error {
	binary, err := lookupBinary()
	if err != nil {
		return err
	}
	return run(binary, "", fmt.Sprintf("7z extract %s -> %s", archivePath, outputDirectory),
		"x", "-y", "-o"+outputDirectory, archivePath)
}

func run(binary string, workingDirectory string, operation string, args ...string) error {
	cmd := exec.Command(binary, args...)
	cmd.Dir = workingDirectory
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("%s: %w: %s", operation, err, detail)
		}
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}
