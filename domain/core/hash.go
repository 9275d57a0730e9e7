package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashReader hashes everything readable from r
func HashReader(r io.Reader) (Hash, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return Hash(hex.EncodeToString(h.Sum(nil))), nil
}

// HashFile hashes the content of the file at path
func HashFile(path string) (Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return HashReader(f)
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Domain-specific hash types
type (
	InputHash  Hash
	OutputHash Hash
	ConfigHash Hash
)

func (h InputHash) String() string  { return Hash(h).String() }
func (h OutputHash) String() string { return Hash(h).String() }
func (h ConfigHash) String() string { return Hash(h).String() }

// ComputeConfigHash hashes a flat settings map independent of key order
func ComputeConfigHash(settings map[string]interface{}) ConfigHash {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString("=")
		data.WriteString(fmt.Sprintf("%v", settings[key]))
		data.WriteString(";")
	}

	return ConfigHash(NewHash([]byte(data.String())))
}
