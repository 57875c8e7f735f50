package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// ErrVerifyMismatch is returned when a staged copy does not hash to the
// same BLAKE3 digest as its source.
var ErrVerifyMismatch = errors.New("checksum mismatch")

// fileDigest returns the 256-bit BLAKE3 digest of the file at path.
func fileDigest(path string) ([32]byte, error) {
	var digest [32]byte

	f, err := os.Open(path)
	if err != nil {
		return digest, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return digest, fmt.Errorf("hash %s: %w", path, err)
	}
	copy(digest[:], h.Sum(nil))
	return digest, nil
}

// verifyCopy compares the digests of src and dst.
func verifyCopy(src, dst string) error {
	want, err := fileDigest(src)
	if err != nil {
		return err
	}
	got, err := fileDigest(dst)
	if err != nil {
		return err
	}
	if want != got {
		return fmt.Errorf("%w: %s", ErrVerifyMismatch, src)
	}
	return nil
}
