// Package identity normalizes and compares player identifiers that appear
// in several inconsistent encodings across replay files.
//
// # Normalization
//
// Internal handles are reduced to a canonical <protocol>-<realm>-<id> form
// by stripping an optional leading region code. Battle tags are trimmed and
// de-confused (fullwidth '＃' becomes '#') before validation.
//
// # Matching
//
// Match implements a strict four-tier priority: battle tag equality, handle
// equality, realm-id suffix equality, then display-name containment. All
// functions are pure; "not found" is a normal result, never an error.
package identity
