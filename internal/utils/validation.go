// Package utils provides common utility functions for internal packages.
//
// This package contains shared functionality that is used across
// multiple internal modules, including hex, validation and HTTP utilities.
package utils

// SelectorHexLength is the number of hex characters in a 4-byte function selector.
const SelectorHexLength = 8

// IsHexString reports whether s contains only hexadecimal digits after an
// optional "0x" prefix.
//
// The empty string (and a bare "0x") is considered valid hex.
//
// Example:
//
//	IsHexString("0xa9059cbb") // true
//	IsHexString("a9059cbb")   // true
//	IsHexString("0xzz")       // false
func IsHexString(s string) bool {
	for _, c := range Remove0x(s) {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

// IsValidSelector validates a 4-byte function selector.
//
// A selector must:
// - Have "0x" prefix
// - Be exactly 10 characters long (0x + 8 hex characters)
// - Contain only hexadecimal digits (0-9, a-f, A-F) after prefix
//
// Parameters:
//   - selector: The selector string to validate
//
// Returns:
//   - bool: true if selector is valid, false otherwise
//
// Example:
//
//	IsValidSelector("0xa9059cbb") // true
//	IsValidSelector("0xa9059c")   // false (too short)
//	IsValidSelector("a9059cbb")   // false (no 0x prefix)
func IsValidSelector(selector string) bool {
	if len(selector) != SelectorHexLength+2 {
		return false
	}
	if selector[:2] != "0x" {
		return false
	}
	return IsHexString(selector)
}

// isHexDigit checks if a rune is a valid hexadecimal digit (0-9, a-f, A-F).
//
// Parameters:
//   - c: The rune to check
//
// Returns:
//   - bool: true if rune is a valid hex digit, false otherwise
func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
