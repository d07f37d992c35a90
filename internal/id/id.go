// Package id generates opaque identifiers for things that are not database
// rows, such as stored image files.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// alphabet omits '-' and '_' so generated names never need escaping in URLs
// or shells and the prefix separator stays unambiguous.
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const size = 21

// Generate returns prefix-<nanoid>, e.g. "recipe-V1StGXR8Z5jdHi6BmyTq8".
func Generate(prefix string) (string, error) {
	s, err := gonanoid.Generate(alphabet, size)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + s, nil
}

// MustGenerate is like Generate but panics on failure.
func MustGenerate(prefix string) string {
	s, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return s
}

// FileName returns a unique file name with the given prefix and extension.
// The extension may be given with or without the leading dot.
func FileName(prefix, ext string) (string, error) {
	s, err := Generate(prefix)
	if err != nil {
		return "", err
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return s, nil
	}
	return s + "." + ext, nil
}
