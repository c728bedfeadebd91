// Package secrets provides local-first helpers around the pairwise master
// secrets and the rotation counters the seal package depends on.
//
// API stability:
//
// Stable:
//   - Fingerprint and the SequenceSource contract.
//
// Experimental:
//   - Filesystem-backed secret storage and counter persistence. These are
//     local convenience utilities, not part of the record format contract.
package secrets
