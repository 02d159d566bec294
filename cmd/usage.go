package cmd

import (
	"fmt"
	"strings"

	"swissarchive/driver"
	L "swissarchive/logger"
)

const usageStr string = `
USAGE
swissarchive COMMAND [OPTIONS]

DESCRIPTION
Compresses a directory tree into a single archive, or extracts any
supported archive back to a directory, with progress reporting and
sha256 integrity verification.

COMMANDS
pack      Archive a file or directory
unpack    Extract an archive
version   Print version information
help      Show help for a command, e.g. 'swissarchive help pack'

FORMATS
%s
Formats are auto-detected from the filename suffix.
`

func PrintUsage() {
	var formats []string
	for _, format := range driver.Formats() {
		formats = append(formats, fmt.Sprintf("%-8s .%s", format.String(), format.Extension()))
	}
	L.Print(fmt.Sprintf(usageStr, strings.Join(formats, "\n")))
}
