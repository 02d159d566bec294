package pack_cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"swissarchive/catalog"
	"swissarchive/driver"
	"swissarchive/encoder"
	L "swissarchive/logger"
	"swissarchive/manifest"
	"swissarchive/progress"
)

type packCmdEnv struct {
	inputPath       string
	outputDirectory string
	outputFilename  string
	includes        []string
	excludes        []string
	catalogPath     string
	noProgress      bool
}

type globList []string

func (g *globList) String() string {
	return strings.Join(*g, ",")
}

func (g *globList) Set(value string) error {
	*g = append(*g, value)
	return nil
}

func Execute(ctx context.Context, args []string) error {
	env, err := parseFlags(args)
	if err != nil {
		return err
	}

	entries, err := manifest.Build(env.inputPath, env.includes, env.excludes)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		L.Warn("no files matched the given filters; the archive will be empty")
	}

	var renderer progress.Renderer
	var updater driver.Updater
	if !env.noProgress {
		renderer = progress.New(os.Stdout)
		updater = renderer.Updater()
	}

	finished, digest, err := pack(env, entries, updater)
	if renderer != nil {
		renderer.Stop()
	}
	if err != nil {
		return err
	}

	info, err := os.Stat(finished.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", finished.Path, err)
	}
	L.Printf("%s  %s  %s\n", digest, finished.Path, L.HumanReadableBytes(uint64(info.Size())))

	if env.catalogPath != "" {
		if err := record(ctx, env, finished, digest); err != nil {
			return err
		}
	}
	return nil
}

func pack(env *packCmdEnv, entries []driver.Entry, updater driver.Updater) (*encoder.Finished, string, error) {
	enc, err := encoder.New(env.outputDirectory, env.outputFilename)
	if err != nil {
		return nil, "", err
	}
	if err := enc.AddEntries(entries, updater); err != nil {
		return nil, "", err
	}
	finished, err := enc.Finish(updater)
	if err != nil {
		return nil, "", err
	}
	digest, err := finished.Digest(updater)
	if err != nil {
		return nil, "", err
	}
	return finished, digest, nil
}

func record(ctx context.Context, env *packCmdEnv, finished *encoder.Finished, digest string) error {
	info, err := os.Stat(finished.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", finished.Path, err)
	}
	format, err := driver.FromFilename(finished.Path)
	if err != nil {
		return err
	}

	cat, err := catalog.Open(ctx, env.catalogPath)
	if err != nil {
		return err
	}
	defer cat.Close()

	archivePath, err := filepath.Abs(finished.Path)
	if err != nil {
		return err
	}
	return cat.Add(ctx, &catalog.Record{
		ArchivePath: archivePath,
		Format:      format.String(),
		Digest:      digest,
		SizeBytes:   info.Size(),
	})
}

func parseFlags(args []string) (*packCmdEnv, error) {
	env := &packCmdEnv{}
	var includes globList
	var excludes globList

	packCmd := flag.NewFlagSet("pack", flag.ExitOnError)
	outputDirectory := packCmd.String("output", ".", "Directory where the archive is written")
	outputFilename := packCmd.String("name", "", "Archive filename; default derives from PATH and -format")
	formatExtension := packCmd.String("format", "tar.gz", "Archive format extension when -name is not given")
	catalogPath := packCmd.String("catalog", "", "Path to a sqlite catalog to record the archive in")
	logLevel := packCmd.String("log-level", L.GetLogLevel().String(), "Set log level: debug info warn error panic")
	noProgress := packCmd.Bool("no-progress", false, "Disable the progress display")
	packCmd.Var(&includes, "include", "Include glob against archive-relative paths (repeatable)")
	packCmd.Var(&excludes, "exclude", "Exclude glob against archive-relative paths (repeatable)")

	packCmd.StringVar(outputDirectory, "o", ".", "alias to -output")
	packCmd.StringVar(outputFilename, "n", "", "alias to -name")
	packCmd.StringVar(formatExtension, "f", "tar.gz", "alias to -format")
	packCmd.StringVar(catalogPath, "c", "", "alias to -catalog")
	packCmd.StringVar(logLevel, "L", L.GetLogLevel().String(), "alias to -log-level")
	packCmd.Var(&includes, "i", "alias to -include")
	packCmd.Var(&excludes, "e", "alias to -exclude")
	packCmd.Usage = func() {
		PrintUsage()
	}

	if err := packCmd.Parse(args); err != nil {
		return nil, err
	}
	if err := L.SetLevelFromString(*logLevel); err != nil {
		return nil, err
	}

	nArgs := len(packCmd.Args())
	if nArgs < 1 {
		return nil, fmt.Errorf("PATH not provided. For more information check 'swissarchive help pack'")
	}
	if nArgs > 1 {
		return nil, fmt.Errorf("Too many arguments. For more information check 'swissarchive help pack'")
	}

	inputPath, err := filepath.Abs(packCmd.Arg(0))
	if err != nil {
		return nil, err
	}
	env.inputPath = inputPath
	env.outputDirectory = *outputDirectory
	env.catalogPath = *catalogPath
	env.noProgress = *noProgress
	env.includes = includes
	env.excludes = excludes

	env.outputFilename = *outputFilename
	if env.outputFilename == "" {
		format, err := driver.FromExtension(*formatExtension)
		if err != nil {
			return nil, err
		}
		env.outputFilename = fmt.Sprintf("%s.%s", filepath.Base(inputPath), format.Extension())
	}
	return env, nil
}
