package driver

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies one of the supported archive/compression schemes.
// All formats except zip are tar containers wrapped in a stream
// compressor; zip is its own container.
type Format string

const (
	FORMAT_GZIP   Format = "gzip"
	FORMAT_BZIP2  Format = "bzip2"
	FORMAT_ZIP    Format = "zip"
	FORMAT_SEVENZ Format = "7z"
	FORMAT_XZ     Format = "xz"
)

var ErrUnsupportedFormat = errors.New("unsupported archive format")

// SevenZTarFilename is the name of the tar file stored inside every
// 7z archive produced by the encoder. The decoder relies on this name
// to find the tar after the 7z tool has extracted it.
const SevenZTarFilename = "swiss_army_archive_seven7_temp.tar"

// Extension returns the canonical suffix used for generated output
// names, without a leading dot.
func (f Format) Extension() string {
	switch f {
	case FORMAT_GZIP:
		return "tar.gz"
	case FORMAT_BZIP2:
		return "tar.bz2"
	case FORMAT_ZIP:
		return "zip"
	case FORMAT_SEVENZ:
		return "tar.7z"
	case FORMAT_XZ:
		return "tar.xz"
	default:
		return "unknown"
	}
}

func (f Format) String() string {
	return string(f)
}

// knownSuffixes is ordered longest first so that FromFilename resolves
// ".tar.bz2" before ".tar.bz".
var knownSuffixes = []struct {
	suffix string
	format Format
}{
	{".tar.bz2", FORMAT_BZIP2},
	{".tar.gz", FORMAT_GZIP},
	{".tar.7z", FORMAT_SEVENZ},
	{".tar.xz", FORMAT_XZ},
	{".tar.bz", FORMAT_BZIP2},
	{".tgz", FORMAT_GZIP},
	{".zip", FORMAT_ZIP},
}

// FromFilename resolves a format by longest-suffix match over the
// known extensions.
func FromFilename(filename string) (Format, error) {
	for _, known := range knownSuffixes {
		if strings.HasSuffix(filename, known.suffix) {
			return known.format, nil
		}
	}
	return "", fmt.Errorf("%w: could not determine compression type from %q suffix", ErrUnsupportedFormat, filename)
}

// FromExtension resolves a format from a canonical extension or an
// accepted alias, with or without a leading dot.
func FromExtension(extension string) (Format, error) {
	ext := strings.TrimPrefix(extension, ".")
	for _, known := range knownSuffixes {
		if ext == strings.TrimPrefix(known.suffix, ".") {
			return known.format, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, extension)
}

// Formats returns the fixed driver set.
func Formats() []Format {
	return []Format{FORMAT_GZIP, FORMAT_BZIP2, FORMAT_ZIP, FORMAT_SEVENZ, FORMAT_XZ}
}
