//go:build cgo && confidentialtx

package main

import (
	"github.com/kysee/privacy/utxo/confidential"
	"github.com/kysee/privacy/utxo/confidential/ffi"
)

func init() {
	nativeEngine = func() confidential.Engine { return ffi.New() }
}
