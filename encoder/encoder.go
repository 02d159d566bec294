// Package encoder packs entries into a compressed archive. Zip writes
// straight to the output file; every other format first collects all
// entries into an in-memory tar stream and compresses that stream as a
// whole when Finish is called.
package encoder

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"swissarchive/checksum"
	"swissarchive/driver"
	"swissarchive/sevenz"
	"swissarchive/task"
)

type Encoder struct {
	format          driver.Format
	outputDirectory string
	outputFilename  string

	// tar-backed formats (everything but zip)
	tarBuffer  *bytes.Buffer
	tarBuilder *tar.Writer

	// zip only
	zipFile   *os.File
	zipWriter *zip.Writer

	finished bool
}

// Finished identifies a fully written archive. The digest is computed
// separately because it is slow and not every caller wants it.
type Finished struct {
	Path string
}

// New resolves the format from outputFilename's suffix. Zip opens the
// output file immediately; tar-backed formats touch the filesystem
// only at Finish.
func New(outputDirectory string, outputFilename string) (*Encoder, error) {
	format, err := driver.FromFilename(outputFilename)
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		format:          format,
		outputDirectory: outputDirectory,
		outputFilename:  outputFilename,
	}

	if format == driver.FORMAT_ZIP {
		outputPath := e.outputPath()
		file, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", outputPath, err)
		}
		e.zipFile = file
		e.zipWriter = zip.NewWriter(file)
	} else {
		e.tarBuffer = &bytes.Buffer{}
		e.tarBuilder = tar.NewWriter(e.tarBuffer)
	}
	return e, nil
}

func (e *Encoder) outputPath() string {
	return filepath.Join(e.outputDirectory, e.outputFilename)
}

// Format returns the resolved output format.
func (e *Encoder) Format() driver.Format {
	return e.format
}

// AddEntries adds each entry in order, reporting "increment/total"
// progress with the entry's archive path as detail.
func (e *Encoder) AddEntries(entries []driver.Entry, updater driver.Updater) error {
	updater.Notify(driver.UpdateStatus{
		Brief: driver.Str(fmt.Sprintf("Archiving (%s)", e.format.Extension())),
	})

	total := uint64(len(entries))
	for _, entry := range entries {
		updater.Notify(driver.UpdateStatus{
			Detail:    driver.Str(entry.ArchivePath),
			Increment: driver.Count(1),
			Total:     driver.Count(total),
		})
		if err := e.AddFile(entry.ArchivePath, entry.FilePath); err != nil {
			return fmt.Errorf("adding %s: %w", entry.ArchivePath, err)
		}
	}

	updater.Notify(driver.UpdateStatus{Detail: driver.Str("...")})
	return nil
}

// AddFile appends one file to the in-progress container. Symlinks are
// preserved as symlink entries in tar-backed formats.
func (e *Encoder) AddFile(archivePath string, filePath string) error {
	if e.finished {
		return fmt.Errorf("encoder for %s is already finished", e.outputFilename)
	}
	if e.format == driver.FORMAT_ZIP {
		return e.addZipFile(archivePath, filePath)
	}
	return e.addTarFile(archivePath, filePath)
}

func (e *Encoder) addTarFile(archivePath string, filePath string) error {
	info, err := os.Lstat(filePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filePath, err)
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		link, err = os.Readlink(filePath)
		if err != nil {
			return fmt.Errorf("reading link target of %s: %w", filePath, err)
		}
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("building tar header for %s: %w", filePath, err)
	}
	header.Name = archivePath

	if err := e.tarBuilder.WriteHeader(header); err != nil {
		return fmt.Errorf("writing tar header for %s: %w", archivePath, err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer file.Close()
	if _, err := io.Copy(e.tarBuilder, file); err != nil {
		return fmt.Errorf("appending %s: %w", filePath, err)
	}
	return nil
}

func (e *Encoder) addZipFile(archivePath string, filePath string) error {
	contents, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading %s for zip archive: %w", filePath, err)
	}

	header := &zip.FileHeader{
		Name:   archivePath,
		Method: zip.Deflate,
	}
	header.SetMode(0o755)

	writer, err := e.zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("starting zip entry %s: %w", archivePath, err)
	}
	if _, err := writer.Write(contents); err != nil {
		return fmt.Errorf("writing zip entry %s: %w", archivePath, err)
	}
	return nil
}

// Finish finalizes the container into the output file. The encoder is
// consumed: no further calls are valid afterward.
func (e *Encoder) Finish(updater driver.Updater) (*Finished, error) {
	if e.finished {
		return nil, fmt.Errorf("encoder for %s is already finished", e.outputFilename)
	}
	e.finished = true

	outputPath := e.outputPath()
	switch e.format {
	case driver.FORMAT_ZIP:
		if err := e.zipWriter.Close(); err != nil {
			e.zipFile.Close()
			return nil, fmt.Errorf("finalizing %s: %w", outputPath, err)
		}
		if err := e.zipFile.Close(); err != nil {
			return nil, fmt.Errorf("closing %s: %w", outputPath, err)
		}

	case driver.FORMAT_SEVENZ:
		if err := e.finishSevenZ(updater); err != nil {
			return nil, err
		}

	default:
		if err := e.finishStream(updater); err != nil {
			return nil, err
		}
	}
	return &Finished{Path: outputPath}, nil
}

// tarBytes closes the in-memory tar builder and returns its contents.
func (e *Encoder) tarBytes() ([]byte, error) {
	if err := e.tarBuilder.Close(); err != nil {
		return nil, fmt.Errorf("finalizing tar stream for %s: %w", e.outputFilename, err)
	}
	return e.tarBuffer.Bytes(), nil
}

// finishStream serializes the tar builder and pushes the bytes through
// the format's stream compressor in chunks, one progress tick each.
func (e *Encoder) finishStream(updater driver.Updater) error {
	contents, err := e.tarBytes()
	if err != nil {
		return err
	}

	outputPath := e.outputPath()
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}

	compressor, err := e.newCompressor(out)
	if err != nil {
		out.Close()
		return err
	}

	if err := e.encodeInChunks(compressor, contents, updater); err != nil {
		compressor.Close()
		out.Close()
		return err
	}
	if err := compressor.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finalizing %s: %w", outputPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", outputPath, err)
	}
	return nil
}

func (e *Encoder) newCompressor(out io.Writer) (io.WriteCloser, error) {
	switch e.format {
	case driver.FORMAT_GZIP:
		return gzip.NewWriter(out), nil
	case driver.FORMAT_BZIP2:
		compressor, err := bzip2.NewWriter(out, nil)
		if err != nil {
			return nil, fmt.Errorf("creating bzip2 compressor: %w", err)
		}
		return compressor, nil
	case driver.FORMAT_XZ:
		compressor, err := xz.NewWriter(out)
		if err != nil {
			return nil, fmt.Errorf("creating xz compressor: %w", err)
		}
		return compressor, nil
	default:
		return nil, fmt.Errorf("%w: no stream compressor for %s", driver.ErrUnsupportedFormat, e.format)
	}
}

func (e *Encoder) encodeInChunks(dst io.Writer, contents []byte, updater driver.Updater) error {
	updater.Notify(driver.UpdateStatus{
		Brief: driver.Str(fmt.Sprintf("Compressing (%s)", e.format.Extension())),
	})
	if len(contents) == 0 {
		return nil
	}

	// chunk size chosen so roughly 4096 ticks cover the stream and the
	// reported total matches the tick count exactly
	chunkSize := len(contents) / 4096
	if chunkSize < 1 {
		chunkSize = 1
	}
	total := uint64((len(contents) + chunkSize - 1) / chunkSize)

	for offset := 0; offset < len(contents); offset += chunkSize {
		end := min(offset+chunkSize, len(contents))
		updater.Notify(driver.UpdateStatus{
			Increment: driver.Count(1),
			Total:     driver.Count(total),
		})
		if _, err := dst.Write(contents[offset:end]); err != nil {
			return fmt.Errorf("compressing %s: %w", e.outputFilename, err)
		}
	}
	return nil
}

// finishSevenZ stages the tar stream in a per-operation temp directory
// (fixed basename so the archive-internal entry name stays stable,
// unique path so concurrent operations cannot collide) and runs the
// external tool on a background task while the caller thread polls.
func (e *Encoder) finishSevenZ(updater driver.Updater) error {
	contents, err := e.tarBytes()
	if err != nil {
		return err
	}

	updater.Notify(driver.UpdateStatus{
		Brief: driver.Str(fmt.Sprintf("Compressing (%s)", e.format.Extension())),
		Total: driver.Count(500),
	})

	outputDirectory := e.outputDirectory
	outputPath := e.outputPath()
	handle := task.Run(func() (struct{}, error) {
		stageDir, err := os.MkdirTemp(outputDirectory, "sevenz-stage-")
		if err != nil {
			return struct{}{}, fmt.Errorf("creating staging directory in %s: %w", outputDirectory, err)
		}
		defer os.RemoveAll(stageDir)

		temporaryTarPath := filepath.Join(stageDir, driver.SevenZTarFilename)
		if err := os.WriteFile(temporaryTarPath, contents, 0o644); err != nil {
			return struct{}{}, fmt.Errorf("writing %s: %w", temporaryTarPath, err)
		}

		// 7z "a" appends to an existing archive instead of replacing it
		if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
			return struct{}{}, fmt.Errorf("removing stale %s: %w", outputPath, err)
		}
		return struct{}{}, sevenz.Compress(temporaryTarPath, outputPath)
	})

	_, err = task.Await(handle, task.PollInterval, func() {
		updater.Notify(driver.UpdateStatus{Increment: driver.Count(1)})
	})
	return err
}

// Digest computes the sha256 of the finished archive on a background
// task, emitting indeterminate ticks while it runs.
func (f *Finished) Digest(updater driver.Updater) (string, error) {
	updater.Notify(driver.UpdateStatus{
		Brief:  driver.Str("Computing digest"),
		Detail: driver.Str(filepath.Base(f.Path)),
	})

	path := f.Path
	handle := task.Run(func() (string, error) {
		return checksum.Sha256File(path)
	})
	return task.Await(handle, task.PollInterval, func() {
		updater.Notify(driver.UpdateStatus{Increment: driver.Count(1)})
	})
}
