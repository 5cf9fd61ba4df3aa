package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

// ContentHasher computes content checksums for uploaded artifacts.
type ContentHasher struct {
	algorithm Algorithm
}

func NewContentHasher(algorithm Algorithm) *ContentHasher {
	return &ContentHasher{
		algorithm: algorithm,
	}
}

func (h *ContentHasher) Calculate(data []byte) (string, error) {
	hasher, err := h.getHasher()
	if err != nil {
		return "", err
	}

	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (h *ContentHasher) CalculateReader(reader io.Reader) (string, error) {
	hasher, err := h.getHasher()
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(hasher, reader); err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// NewWriter returns the raw hash.Hash so callers can tee uploads through it
// and read the sum after the copy finishes.
func (h *ContentHasher) NewWriter() (hash.Hash, error) {
	return h.getHasher()
}

func Sum(w hash.Hash) string {
	return hex.EncodeToString(w.Sum(nil))
}

func (h *ContentHasher) getHasher() (hash.Hash, error) {
	switch h.algorithm {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", h.algorithm)
	}
}
