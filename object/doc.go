// Package object provides opaque handles to simulation entities: signals,
// modules, arrays, memories and parameters.
//
// Handles are created by lookup (root, by-name, by-index, iteration) and
// destroyed explicitly by the holder; there are no ownership cycles. Name
// and type strings are fetched from the backend lazily and cached.
//
// Value access supports four encodings (bit-string, byte string, IEEE
// double, integer) and three write actions (deposit, force, release).
// A release on a handle that was never forced is rejected. Absent values
// are normalized to NullValue rather than surfacing a backend null.
package object
