// SPDX-License-Identifier: MPL-2.0

package nwtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

const (
	// FindingInfo is a neutral statement about the run.
	FindingInfo Severity = iota
	// FindingOK reports a healthy result.
	FindingOK
	// FindingWarning reports something the operator should look at.
	FindingWarning
	// FindingProblem reports a detected fault.
	FindingProblem
)

const (
	// FormatText renders Findings as plain lines.
	FormatText Format = "text"
	// FormatJSON encodes the Summary as JSON.
	FormatJSON Format = "json"
	// FormatTOML encodes the Summary as TOML.
	FormatTOML Format = "toml"
)

// ErrInvalidFormat is returned for an unknown summary format.
var ErrInvalidFormat = errors.New("invalid summary format")

type (
	// Severity grades a Finding for display.
	Severity int

	// Finding is one line of the end-of-run report.
	Finding struct {
		Severity Severity
		Text     string
	}

	// Format names a summary export encoding.
	Format string

	// InvalidFormatError is returned when a Format is not recognized.
	InvalidFormatError struct {
		Value Format
	}
)

// Error implements error.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid summary format %q (expected text, json or toml)", e.Value)
}

// Unwrap returns ErrInvalidFormat.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// Validate returns an *InvalidFormatError for unknown formats.
func (f Format) Validate() error {
	switch f {
	case FormatText, FormatJSON, FormatTOML:
		return nil
	}
	return &InvalidFormatError{Value: f}
}

// Findings turns the summary into report lines: the packet total, the
// encryption verdict, then one line per pid with errors in first-observed
// order, or a single all-clear line when there are none.
func (s Summary) Findings() []Finding {
	findings := []Finding{
		{Severity: FindingInfo, Text: fmt.Sprintf("Total packets: %d", s.TotalPackets)},
	}

	if s.Encrypted() {
		findings = append(findings, Finding{
			Severity: FindingWarning,
			Text:     fmt.Sprintf("Channel appears encrypted: %d encrypted packets", s.EncryptedPackets),
		})
	} else {
		findings = append(findings, Finding{Severity: FindingOK, Text: "No encryption detected"})
	}

	reported := 0
	for _, pid := range s.pids() {
		count := s.SequenceErrorsByPID[pid]
		if count == 0 {
			continue
		}
		findings = append(findings, Finding{
			Severity: FindingProblem,
			Text:     fmt.Sprintf("PID %s: %d sequence errors", pid, count),
		})
		reported++
	}
	if reported == 0 {
		findings = append(findings, Finding{Severity: FindingOK, Text: "No sequence errors detected"})
	}

	return findings
}

// Encode writes the summary to w in the given format.
func (s Summary) Encode(w io.Writer, format Format) error {
	if err := format.Validate(); err != nil {
		return err
	}

	out := s
	if out.SequenceErrorsByPID == nil {
		out.SequenceErrorsByPID = map[string]int{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encoding summary as json: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(out); err != nil {
			return fmt.Errorf("encoding summary as toml: %w", err)
		}
	case FormatText:
		for _, f := range out.Findings() {
			if _, err := fmt.Fprintln(w, f.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

// pids returns the pid keys in first-observed order. Keys missing from
// PIDOrder (a Summary built by hand) follow in lexical order.
func (s Summary) pids() []string {
	if len(s.PIDOrder) == len(s.SequenceErrorsByPID) {
		return s.PIDOrder
	}
	seen := make(map[string]bool, len(s.PIDOrder))
	pids := make([]string, 0, len(s.SequenceErrorsByPID))
	for _, pid := range s.PIDOrder {
		if _, ok := s.SequenceErrorsByPID[pid]; ok && !seen[pid] {
			seen[pid] = true
			pids = append(pids, pid)
		}
	}
	var rest []string
	for pid := range s.SequenceErrorsByPID {
		if !seen[pid] {
			rest = append(rest, pid)
		}
	}
	slices.Sort(rest)
	return append(pids, rest...)
}
