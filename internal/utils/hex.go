// Package utils provides common utility functions for internal packages.
//
// This package contains shared functionality that is used across
// multiple internal modules, including hex, validation and HTTP utilities.
package utils

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Remove0x strips a leading "0x" or "0X" prefix from a hex string.
//
// Strings without the prefix are returned unchanged.
//
// Example:
//
//	Remove0x("0xa9059cbb") // "a9059cbb"
//	Remove0x("a9059cbb")   // "a9059cbb"
func Remove0x(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// Add0x prepends "0x" to a hex string unless it is already prefixed.
//
// Example:
//
//	Add0x("a9059cbb")   // "0xa9059cbb"
//	Add0x("0xa9059cbb") // "0xa9059cbb"
func Add0x(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	if strings.HasPrefix(s, "0X") {
		return "0x" + s[2:]
	}
	return "0x" + s
}

// BytesToHex encodes b as a lowercase, "0x"-prefixed hex string.
//
// An empty or nil slice encodes to "0x".
func BytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// HexToBytes decodes a hex string with or without the "0x" prefix.
//
// Parameters:
//   - s: The hex string to decode
//
// Returns:
//   - []byte: The decoded bytes
//   - error: An error if s has odd length or contains non-hex characters
func HexToBytes(s string) ([]byte, error) {
	b, err := hex.DecodeString(Remove0x(s))
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return b, nil
}
