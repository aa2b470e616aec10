// Package backend defines the capability surface a vendor procedural
// interface binding must provide: object discovery and value access,
// scheduler callback registration, and the vendor diagnostic channel.
//
// Backend quirks (inline versus deferred callback cleanup, synchronous
// reaction to signal writes) stay behind this seam as explicit policy;
// the re-entrancy queuing in package dispatch is shared unconditionally
// because it is a protocol-level safety property, not a quirk.
//
// The reference in-memory implementation lives in backend/simsched.
package backend
