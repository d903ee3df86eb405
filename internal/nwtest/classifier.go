// SPDX-License-Identifier: MPL-2.0

package nwtest

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

const (
	encryptedMarker     = "Encryp:"
	totalMarker         = "Total:"
	sequenceErrorMarker = "sequence error"

	// DefaultPIDField is the whitespace token index read as the pid of a
	// sequence error line. Index 1 reproduces the historical nwtest report
	// parsing, which yields the literal word "sequence" for lines shaped like
	// "<pid> sequence error ...". Configure a different index with
	// WithPIDField when the real pid column is known.
	DefaultPIDField = 1

	// countField is the token index holding the value of Total:/Encryp: lines.
	countField = 1
)

// LineOther and friends report which rule, if any, a line matched.
const (
	LineOther LineKind = iota
	LineEncrypted
	LineTotal
	LineSequenceError
)

type (
	// LineKind identifies the classification rule applied to a line.
	LineKind int

	// Summary is the accumulated state of one nwtest run.
	Summary struct {
		// TotalPackets is the value of the most recent "Total:" line.
		TotalPackets int `json:"total_packets" toml:"total_packets"`
		// EncryptedPackets is the value of the most recent "Encryp:" line.
		EncryptedPackets int `json:"encrypted_packets" toml:"encrypted_packets"`
		// SequenceErrorsByPID counts "sequence error" lines per extracted pid.
		SequenceErrorsByPID map[string]int `json:"sequence_errors_by_pid" toml:"sequence_errors_by_pid"`
		// PIDOrder holds the keys of SequenceErrorsByPID in first-observed order.
		PIDOrder []string `json:"-" toml:"-"`
	}

	// Classifier is a single-consumer line accumulator. It is not safe for
	// concurrent use; exactly one reader of the tool output drives it.
	Classifier struct {
		pidField int
		state    Summary
	}

	// Option configures a Classifier.
	Option func(*Classifier)
)

// String returns the rule name.
func (k LineKind) String() string {
	switch k {
	case LineEncrypted:
		return "encrypted"
	case LineTotal:
		return "total"
	case LineSequenceError:
		return "sequence-error"
	case LineOther:
		return "other"
	}
	return "other"
}

// WithPIDField selects the whitespace token index used as the pid key.
// Negative values are ignored.
func WithPIDField(index int) Option {
	return func(c *Classifier) {
		if index >= 0 {
			c.pidField = index
		}
	}
}

// NewClassifier returns a classifier with zeroed accumulators.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		pidField: DefaultPIDField,
		state: Summary{
			SequenceErrorsByPID: make(map[string]int),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observe applies the first matching rule to line and reports which one
// matched. The line may carry any trailing terminator.
//
// Rules, in priority order:
//  1. "Encryp:" sets EncryptedPackets from token 1 (0 if not an integer).
//  2. "Total:" sets TotalPackets the same way.
//  3. "sequence error" increments the count of the pid token.
//
// A matched line too short to hold the token its rule reads is treated as
// LineOther and leaves the state untouched.
func (c *Classifier) Observe(line string) LineKind {
	switch {
	case strings.Contains(line, encryptedMarker):
		n, ok := parseCount(line)
		if !ok {
			return LineOther
		}
		c.state.EncryptedPackets = n
		return LineEncrypted

	case strings.Contains(line, totalMarker):
		n, ok := parseCount(line)
		if !ok {
			return LineOther
		}
		c.state.TotalPackets = n
		return LineTotal

	case strings.Contains(line, sequenceErrorMarker):
		fields := strings.Fields(line)
		if len(fields) <= c.pidField {
			return LineOther
		}
		pid := fields[c.pidField]
		if _, seen := c.state.SequenceErrorsByPID[pid]; !seen {
			c.state.PIDOrder = append(c.state.PIDOrder, pid)
		}
		c.state.SequenceErrorsByPID[pid]++
		return LineSequenceError
	}

	return LineOther
}

// Summary returns a copy of the current accumulators.
func (c *Classifier) Summary() Summary {
	return Summary{
		TotalPackets:        c.state.TotalPackets,
		EncryptedPackets:    c.state.EncryptedPackets,
		SequenceErrorsByPID: maps.Clone(c.state.SequenceErrorsByPID),
		PIDOrder:            slices.Clone(c.state.PIDOrder),
	}
}

// Encrypted reports whether the last "Encryp:" value was positive.
func (s Summary) Encrypted() bool {
	return s.EncryptedPackets > 0
}

// parseCount reads token 1 of line as a packet count. ok is false when the
// line has no such token. Tokens that are not non-negative integers count
// as 0.
func parseCount(line string) (n int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) <= countField {
		return 0, false
	}
	n, err := strconv.Atoi(fields[countField])
	if err != nil || n < 0 {
		return 0, true
	}
	return n, true
}
