// SPDX-License-Identifier: MPL-2.0

// Package toolkit holds the catalog of qakit features.
//
// A feature is a command template plus the prompts that fill it. Templates
// are shell words ("convert \"$INPUT\" \"$OUTPUT\"") expanded with
// mvdan.cc/sh, with prompt answers bound as variables, so the result is an
// argv that is executed directly without a shell in between.
package toolkit
