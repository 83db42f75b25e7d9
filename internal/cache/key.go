package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// KeyBuilder derives a content key from a stage's parameters and inputs.
// Each part is length-prefixed so ("ab","c") and ("a","bc") differ.
type KeyBuilder struct {
	h hash.Hash
}

// NewKey starts a key for the named stage.
func NewKey(stage string) *KeyBuilder {
	k := &KeyBuilder{h: sha256.New()}
	k.write("stage", []byte(stage))
	return k
}

// Param mixes a named parameter into the key.
func (k *KeyBuilder) Param(name, value string) *KeyBuilder {
	k.write(name, []byte(value))
	return k
}

// Input mixes the content of an upstream artifact into the key.
func (k *KeyBuilder) Input(name string, content []byte) *KeyBuilder {
	k.write(name, content)
	return k
}

// Sum returns the hex SHA-256 of everything written so far.
func (k *KeyBuilder) Sum() string {
	return hex.EncodeToString(k.h.Sum(nil))
}

func (k *KeyBuilder) write(name string, data []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(name)))
	k.h.Write(n[:])
	k.h.Write([]byte(name))
	binary.BigEndian.PutUint64(n[:], uint64(len(data)))
	k.h.Write(n[:])
	k.h.Write(data)
}

// FileDigest returns the SHA-256 of the file at path, streamed from disk.
func FileDigest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}
	return h.Sum(nil), nil
}
