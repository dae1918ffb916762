package asset

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest of an asset's source bytes.
type Hash [32]byte

// sourceDomainKey separates source digests from any other BLAKE3 use.
var sourceDomainKey = [32]byte{
	'm', 'i', 'd', 'g', 'a', 'r', 'd', '.', 'a', 's', 's', 'e', 't', 's', '.',
	's', 'o', 'u', 'r', 'c', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func newHasher() *blake3.Hasher {
	// NewKeyed only fails for keys that are not 32 bytes.
	hasher, err := blake3.NewKeyed(sourceDomainKey[:])
	if err != nil {
		panic("asset: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

// Digest hashes data.
func Digest(data []byte) Hash {
	hasher := newHasher()
	hasher.Write(data)
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}

// DigestFile streams a file through the hasher.
func DigestFile(p string) (Hash, error) {
	f, err := os.Open(p)
	if err != nil {
		return Hash{}, err
	}
	defer f.Close()

	hasher := newHasher()
	if _, err := io.Copy(hasher, f); err != nil {
		return Hash{}, fmt.Errorf("hashing %s: %w", p, err)
	}
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h, nil
}

// Staleness says why an asset needs rebuilding.
type Staleness int

// Staleness reasons, checked in this order.
const (
	UpToDate Staleness = iota
	TargetMissing
	HashMissing
	HashMismatch
)

func (s Staleness) String() string {
	switch s {
	case UpToDate:
		return "up-to-date"
	case TargetMissing:
		return "target missing"
	case HashMissing:
		return "hash missing"
	case HashMismatch:
		return "source changed"
	}
	return fmt.Sprintf("Staleness(%d)", int(s))
}

// Check digests the source and compares it with the stored record. It
// performs no writes. The digest is returned for WriteHash.
func (a Asset) Check() (Staleness, Hash, error) {
	digest, err := DigestFile(a.SourcePath)
	if err != nil {
		return 0, Hash{}, fmt.Errorf("reading source: %w", err)
	}

	if _, err := os.Stat(a.TargetPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return TargetMissing, digest, nil
		}
		return 0, digest, err
	}

	stored, err := os.ReadFile(a.HashPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return HashMissing, digest, nil
		}
		return 0, digest, err
	}
	if !bytes.Equal(stored, digest[:]) {
		return HashMismatch, digest, nil
	}
	return UpToDate, digest, nil
}

// WriteHash persists the digest as 32 raw bytes.
func (a Asset) WriteHash(h Hash) error {
	return writeFile(a.HashPath, h[:])
}
