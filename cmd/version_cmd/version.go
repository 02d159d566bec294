package version_cmd

import (
	"context"
	"fmt"

	L "swissarchive/logger"
)

// NOTE: populated at build time with -ldflags (-X)
var version string = "0.1.0-dev"

func Execute(ctx context.Context, args []string) error {
	L.Print(fmt.Sprintf("swissarchive %s", version))
	return nil
}
