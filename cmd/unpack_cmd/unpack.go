package unpack_cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"swissarchive/catalog"
	"swissarchive/decoder"
	"swissarchive/driver"
	L "swissarchive/logger"
	"swissarchive/progress"
)

type unpackCmdEnv struct {
	inputPath       string
	outputDirectory string
	expectedDigest  string
	catalogPath     string
	noProgress      bool
}

func Execute(ctx context.Context, args []string) error {
	env, err := parseFlags(args)
	if err != nil {
		return err
	}

	// with a catalog but no explicit digest, verify against the
	// recorded one
	if env.expectedDigest == "" && env.catalogPath != "" {
		digest, err := lookupDigest(ctx, env)
		if err != nil {
			return err
		}
		env.expectedDigest = digest
	}

	dec, err := decoder.New(env.inputPath, env.expectedDigest, env.outputDirectory)
	if err != nil {
		return err
	}

	var renderer progress.Renderer
	var updater driver.Updater
	if !env.noProgress {
		renderer = progress.New(os.Stdout)
		updater = renderer.Updater()
	}

	extracted, err := dec.Extract(updater)
	if renderer != nil {
		renderer.Stop()
	}
	if err != nil {
		return err
	}

	L.Printf("extracted %d files to %s\n", len(extracted.Files), env.outputDirectory)
	if L.IsVerbose() {
		for file := range extracted.Files {
			L.Debug(file)
		}
	}
	return nil
}

func lookupDigest(ctx context.Context, env *unpackCmdEnv) (string, error) {
	cat, err := catalog.Open(ctx, env.catalogPath)
	if err != nil {
		return "", err
	}
	defer cat.Close()

	record, err := cat.FindByPath(ctx, env.inputPath)
	if errors.Is(err, catalog.ErrNotFound) {
		L.Warn(fmt.Sprintf("archive %s is not in the catalog; skipping digest verification", env.inputPath))
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return record.Digest, nil
}

func parseFlags(args []string) (*unpackCmdEnv, error) {
	env := &unpackCmdEnv{}

	unpackCmd := flag.NewFlagSet("unpack", flag.ExitOnError)
	outputDirectory := unpackCmd.String("output", ".", "Directory to extract into")
	expectedDigest := unpackCmd.String("sha256", "", "Expected sha256 digest; extraction fails on mismatch")
	catalogPath := unpackCmd.String("catalog", "", "sqlite catalog to look the expected digest up in")
	logLevel := unpackCmd.String("log-level", L.GetLogLevel().String(), "Set log level: debug info warn error panic")
	noProgress := unpackCmd.Bool("no-progress", false, "Disable the progress display")

	unpackCmd.StringVar(outputDirectory, "o", ".", "alias to -output")
	unpackCmd.StringVar(expectedDigest, "s", "", "alias to -sha256")
	unpackCmd.StringVar(catalogPath, "c", "", "alias to -catalog")
	unpackCmd.StringVar(logLevel, "L", L.GetLogLevel().String(), "alias to -log-level")
	unpackCmd.Usage = func() {
		PrintUsage()
	}

	if err := unpackCmd.Parse(args); err != nil {
		return nil, err
	}
	if err := L.SetLevelFromString(*logLevel); err != nil {
		return nil, err
	}

	nArgs := len(unpackCmd.Args())
	if nArgs < 1 {
		return nil, fmt.Errorf("ARCHIVE not provided. For more information check 'swissarchive help unpack'")
	}
	if nArgs > 1 {
		return nil, fmt.Errorf("Too many arguments. For more information check 'swissarchive help unpack'")
	}

	inputPath, err := filepath.Abs(unpackCmd.Arg(0))
	if err != nil {
		return nil, err
	}
	env.inputPath = inputPath
	env.outputDirectory = *outputDirectory
	env.expectedDigest = *expectedDigest
	env.catalogPath = *catalogPath
	env.noProgress = *noProgress
	return env, nil
}
