package pack_cmd

import L "swissarchive/logger"

const usageStr string = `
USAGE
swissarchive pack [OPTIONS] PATH

DESCRIPTION
Walks PATH (a file or directory), filters the files through the
include/exclude globs, packs them into a single archive and prints the
archive's sha256 digest.

OPTIONS
--output, -o [DIRECTORY]
Directory where the archive is written.
Default is: .

--name, -n [FILENAME]
Archive filename. The format is auto-detected from its suffix.
Default derives from PATH's basename and --format.

--format, -f [EXTENSION]
Archive format used when --name is not given.
Accepted values: tar.gz, tgz, tar.bz2, tar.bz, zip, tar.7z, tar.xz

--include, -i [GLOB]
Only archive files whose archive-relative path matches at least one
include glob. Repeatable.

--exclude, -e [GLOB]
Skip files whose archive-relative path matches any exclude glob.
Applied after includes. Repeatable.

--catalog, -c [DB_PATH]
Record the archive path, format, size and digest in a sqlite catalog.

--no-progress
Disable the progress display.

--log-level, -L [LEVEL]
Accepted values: debug, info, warn, error, panic, silent

EXAMPLES
1. Pack a directory as tar.gz next to the current directory.
swissarchive pack ./photos

2. Pack only go sources into a zip, skipping tests.
swissarchive pack -n src.zip -i '**/*.go' -e '**/*_test.go' ./project

SEE ALSO
1. swissarchive help unpack
`

func Usage() string {
	return usageStr
}

func PrintUsage() {
	L.Print(usageStr)
}
