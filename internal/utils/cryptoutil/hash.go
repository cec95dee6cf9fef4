// Package cryptoutil hashes attachment payloads for manifests and
// reputation lookups.
package cryptoutil

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/deploymenttheory/go-msgreader/internal/utils/errors"
)

// Bytes2Hex encodes a byte slice to hex string
func Bytes2Hex(d []byte) string {
	return hex.EncodeToString(d)
}

// HashAlgorithm represents supported hash algorithms
type HashAlgorithm string

const (
	// MD5 algorithm (not recommended for security-critical applications)
	MD5 HashAlgorithm = "md5"

	// SHA1 algorithm (not recommended for security-critical applications)
	SHA1 HashAlgorithm = "sha1"

	SHA256     HashAlgorithm = "sha256"
	SHA512     HashAlgorithm = "sha512"
	SHA3_256   HashAlgorithm = "sha3-256"
	BLAKE2b256 HashAlgorithm = "blake2b-256"
)

// Algorithms lists every supported algorithm.
var Algorithms = []HashAlgorithm{MD5, SHA1, SHA256, SHA512, SHA3_256, BLAKE2b256}

// Hasher provides an interface for hashing operations
type Hasher interface {
	// Algorithm returns the algorithm the hasher was built for
	Algorithm() HashAlgorithm

	// Hash hashes the provided data
	Hash(data []byte) string

	// HashReader hashes data from a reader
	HashReader(reader io.Reader) (string, error)

	// NewHashWriter creates a writer for streaming hash calculation
	NewHashWriter() *HashWriter

	// Verify checks if the provided hash matches the calculated hash for the data
	Verify(data []byte, expectedHash string) bool
}

// hasherImpl implements the Hasher interface
type hasherImpl struct {
	algorithm HashAlgorithm
	newHash   func() hash.Hash
}

func newBLAKE2b256() hash.Hash {
	// Only fails for keys longer than 64 bytes.
	h, _ := blake2b.New256(nil)
	return h
}

// NewHasher creates a new Hasher for the specified algorithm
func NewHasher(algorithm HashAlgorithm) (Hasher, error) {
	var newHashFunc func() hash.Hash

	switch HashAlgorithm(strings.ToLower(string(algorithm))) {
	case MD5:
		newHashFunc = md5.New
	case SHA1:
		newHashFunc = sha1.New
	case SHA256:
		newHashFunc = sha256.New
	case SHA512:
		newHashFunc = sha512.New
	case SHA3_256:
		newHashFunc = sha3.New256
	case BLAKE2b256:
		newHashFunc = newBLAKE2b256
	default:
		return nil, fmt.Errorf("%w: unsupported hash algorithm '%s'", errors.ErrInvalidArgument, algorithm)
	}

	return &hasherImpl{
		algorithm: HashAlgorithm(strings.ToLower(string(algorithm))),
		newHash:   newHashFunc,
	}, nil
}

func (h *hasherImpl) Algorithm() HashAlgorithm {
	return h.algorithm
}

// Hash hashes the provided data
func (h *hasherImpl) Hash(data []byte) string {
	hasher := h.newHash()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashReader hashes data from a reader
func (h *hasherImpl) HashReader(reader io.Reader) (string, error) {
	hasher := h.newHash()
	if _, err := io.Copy(hasher, reader); err != nil {
		return "", fmt.Errorf("hash operation failed: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// NewHashWriter creates a writer for streaming hash calculation
func (h *hasherImpl) NewHashWriter() *HashWriter {
	return &HashWriter{hash: h.newHash()}
}

// Verify checks if the provided hash matches the calculated hash for the data
func (h *hasherImpl) Verify(data []byte, expectedHash string) bool {
	return strings.EqualFold(h.Hash(data), expectedHash)
}
