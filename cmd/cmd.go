package cmd

import (
	"context"

	"swissarchive/cmd/pack_cmd"
	"swissarchive/cmd/unpack_cmd"
	"swissarchive/cmd/version_cmd"
)

func Execute(ctx context.Context, args []string) error {
	if len(args) < 2 {
		PrintUsage()
		return nil
	}

	switch args[1] {
	case "pack":
		return pack_cmd.Execute(ctx, args[2:])
	case "unpack":
		return unpack_cmd.Execute(ctx, args[2:])
	case "help":
		return help(args[2:])
	case "version", "--version", "-v":
		return version_cmd.Execute(ctx, args[2:])
	default:
		PrintUsage()
		return nil
	}
}

func help(args []string) error {
	if len(args) < 1 {
		PrintUsage()
		return nil
	}
	switch args[0] {
	case "pack":
		pack_cmd.PrintUsage()
	case "unpack":
		unpack_cmd.PrintUsage()
	default:
		PrintUsage()
	}
	return nil
}
