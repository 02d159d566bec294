package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

func Sha256(bytes []byte) []byte {
	h := sha256.Sum256(bytes)
	return h[:]
}

func HexEncodeStr(bytes []byte) string {
	return hex.EncodeToString(bytes)
}

func NewSha256() hash.Hash {
	return sha256.New()
}

// Sha256File computes the hex-encoded sha256 digest of a file's raw
// bytes, streaming so large archives are not held in memory.
func Sha256File(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening %s for digest: %w", filePath, err)
	}
	defer file.Close()

	h := NewSha256()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("digesting %s: %w", filePath, err)
	}
	return HexEncodeStr(h.Sum(nil)), nil
}
