// Package main provides C API bindings for the diplomacy bridge, letting C
// applications (the foreign jurisdiction) exchange envoys with Go code that
// shares the process.
//
// # Build Instructions
//
// To build as a C shared library:
//
//	go build -buildmode=c-shared -o libdiplomacy.so ./capi/
//
// This generates:
//   - libdiplomacy.so: The shared library
//   - libdiplomacy.h: Auto-generated C header with the DIPLOMACY_ERR enum and
//     function declarations
//
// # C API Usage
//
//	#include "libdiplomacy.h"
//
//	if (establish_relations() != DIPLOMACY_ERR_OK) {
//	    return 1;
//	}
//
//	// Dispatch identifiers to the Go side
//	send_envoy(42);
//	send_envoy_payload(7, (const uint8_t *)"hello", 5);
//	send_envoy_wire((const uint8_t *)"9:a:b", 5);
//
//	// Collect messages queued by Go, formatted "{id}:{payload}"
//	uint8_t buf[4107];
//	int32_t n;
//	while ((n = receive_envoy(buf, sizeof buf)) > 0) {
//	    fwrite(buf, 1, n, stdout);
//	}
//	if (n == -DIPLOMACY_ERR_BUFFER_TOO_SMALL) {
//	    // grow to diplomacy_next_envoy_size() and retry
//	}
//
//	dissolve_relations();
//
// # Error Handling
//
// Functions that perform an action return a DIPLOMACY_ERR status. Functions
// that return a length or depth report failures as the negated status, so
// any negative value is an error.
//
// Payloads must be valid UTF-8; anything else is rejected with
// DIPLOMACY_ERR_MALFORMED and nothing is queued.
//
// receive_envoy never drops a message: if the buffer is too small the
// message stays queued. Received buffers are not NUL-terminated.
//
// # Thread Safety
//
// Every function may be called from any thread. Payload bytes are copied
// before the call returns, so callers may reuse their buffers.
//
// # Logging
//
// Diagnostics go to stderr through logrus. Set DIPLOMACY_LOG_LEVEL (for
// example "debug" or "error") before loading the library to change the level.
//
// # Files
//
//   - diplomacy_c.go: exported C functions
//   - status.go: error to status code mapping
//   - doc.go: This documentation file
package main
