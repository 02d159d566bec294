package unpack_cmd

import L "swissarchive/logger"

const usageStr string = `
USAGE
swissarchive unpack [OPTIONS] ARCHIVE

DESCRIPTION
Extracts ARCHIVE into the output directory. The format is auto-detected
from ARCHIVE's suffix. If an expected digest is supplied (directly or
via the catalog), it is verified before anything is written; a mismatch
aborts the extraction with no files produced.

OPTIONS
--output, -o [DIRECTORY]
Directory to extract into. Created if missing.
Default is: .

--sha256, -s [DIGEST]
Expected sha256 digest of the archive file.

--catalog, -c [DB_PATH]
Look the expected digest up in a sqlite catalog written by
'swissarchive pack --catalog'. Ignored when --sha256 is given.

--no-progress
Disable the progress display.

--log-level, -L [LEVEL]
Accepted values: debug, info, warn, error, panic, silent

EXAMPLES
1. Extract with integrity verification.
swissarchive unpack -s 2cf24dba... -o ./restore photos.tar.gz

2. Extract a 7z archive (requires a 7z binary in PATH).
swissarchive unpack -o ./restore release.tar.7z

SEE ALSO
1. swissarchive help pack
`

func Usage() string {
	return usageStr
}

func PrintUsage() {
	L.Print(usageStr)
}
