// SPDX-License-Identifier: MPL-2.0

// Package nwtest classifies the streamed report lines of the nwtest multicast
// test tool.
//
// A Classifier is fed one line at a time while the tool runs and keeps three
// accumulators: the last reported total packet count, the last reported
// encrypted packet count, and a per-pid tally of sequence errors. When the
// tool exits the caller reads the Summary and renders its Findings, or
// exports it with Encode.
//
// The classifier performs no I/O. Echoing the tool output, cancellation and
// process lifetime belong to the caller (see internal/runner).
package nwtest
