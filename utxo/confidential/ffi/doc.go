// Package ffi binds confidential.Engine to the native confidential transaction
// library through cgo. It is only compiled with the confidentialtx build tag:
//
//	CGO_LDFLAGS="-L/path/to/lib" go build -tags confidentialtx ./...
//
// The library exchanges RLP byte buffers. Every buffer and message string it
// returns is owned by the library and released through its free functions.
package ffi
