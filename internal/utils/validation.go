package utils

import (
	"strings"
)

// IsValidEthAddress validates an Ethereum address format.
//
// An Ethereum address must:
// - Not be empty
// - Have "0x" prefix
// - Be exactly 42 characters long (0x + 40 hex characters)
// - Contain only hexadecimal digits (0-9, a-f, A-F) after prefix
//
// Checksums are not verified here; ethgo.HexToAddress accepts any case.
//
// Example:
//
//	IsValidEthAddress("0x1234567890123456789012345678901234567890") // true
//	IsValidEthAddress("0x123456789012345678901234567890123456789")  // false (too short)
//	IsValidEthAddress("1234567890123456789012345678901234567890")   // false (no 0x prefix)
func IsValidEthAddress(addr string) bool {
	if !strings.HasPrefix(addr, "0x") || len(addr) != 42 {
		return false
	}
	return IsHexDigits(addr[2:])
}

// IsHexDigits reports whether s is non-empty and made only of hexadecimal
// digits. Signs, prefixes and whitespace are rejected.
func IsHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

// isHexDigit checks if a rune is a valid hexadecimal digit (0-9, a-f, A-F).
func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
