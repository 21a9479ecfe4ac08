//go:build cgo && confidentialtx

package ffi

/*
#cgo LDFLAGS: -lconfidentialtx
#include <stdint.h>
#include <stdlib.h>

typedef struct {
	uint8_t *data;
	size_t   len;
} ct_buffer;

typedef struct {
	int32_t code;
	char   *message;
} ct_error;

extern ct_error ct_create_keypair(ct_buffer *out);
extern ct_error ct_create_tx(const uint8_t *desc, size_t desc_len, ct_buffer *out);
extern ct_error ct_decrypt_note(const uint8_t *cipher, size_t cipher_len,
                                const uint8_t *view_sk, size_t view_sk_len, ct_buffer *out);
extern ct_error ct_is_note_owner(const uint8_t *ephemeral_pk, size_t ephemeral_pk_len,
                                 const uint8_t *sign_pk, size_t sign_pk_len,
                                 const uint8_t *spend_pk, size_t spend_pk_len,
                                 const uint8_t *view_sk, size_t view_sk_len, uint8_t *owned);
extern void ct_free_buffer(ct_buffer buf);
extern void ct_free_string(char *s);
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/kysee/privacy/utils"
	"github.com/kysee/privacy/utxo/confidential"
	"github.com/kysee/privacy/utxo/types"
	"github.com/rs/zerolog"
)

// Engine calls the native library. The library is not assumed to be
// reentrant, so calls are serialized.
type Engine struct {
	mtx    sync.Mutex
	logger zerolog.Logger
}

var _ confidential.Engine = (*Engine)(nil)

func New() *Engine {
	return &Engine{logger: utils.ComponentLogger("ffi")}
}

// check converts a native error, releasing its message.
func check(e C.ct_error) error {
	if e.message != nil {
		defer C.ct_free_string(e.message)
	}
	if e.code == 0 {
		return nil
	}
	msg := ""
	if e.message != nil {
		msg = C.GoString(e.message)
	}
	return &types.EngineError{Code: int32(e.code), Message: msg}
}

// take copies a native buffer into Go memory and releases it.
func take(buf C.ct_buffer) []byte {
	if buf.data == nil {
		return nil
	}
	defer C.ct_free_buffer(buf)
	return C.GoBytes(unsafe.Pointer(buf.data), C.int(buf.len))
}

// cbytes passes a Go slice to C. The pointer is only valid during the call.
func cbytes(b []byte) (*C.uint8_t, C.size_t) {
	if len(b) == 0 {
		return nil, 0
	}
	return (*C.uint8_t)(unsafe.Pointer(&b[0])), C.size_t(len(b))
}

func (e *Engine) CreateKeypair() ([]byte, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	var out C.ct_buffer
	err := check(C.ct_create_keypair(&out))
	bz := take(out)
	if err != nil {
		return nil, err
	}
	return bz, nil
}

func (e *Engine) CreateTx(descriptor []byte) ([]byte, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	desc, descLen := cbytes(descriptor)
	var out C.ct_buffer
	err := check(C.ct_create_tx(desc, descLen, &out))
	bz := take(out)
	if err != nil {
		e.logger.Debug().Err(err).Int("descriptorSize", len(descriptor)).Msg("native create tx failed")
		return nil, err
	}
	return bz, nil
}

func (e *Engine) DecryptNote(cipherValue, viewSk []byte) ([]byte, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	cv, cvLen := cbytes(cipherValue)
	sk, skLen := cbytes(viewSk)
	var out C.ct_buffer
	err := check(C.ct_decrypt_note(cv, cvLen, sk, skLen, &out))
	bz := take(out)
	if err != nil {
		return nil, err
	}
	return bz, nil
}

func (e *Engine) IsNoteOwner(ephemeralPk, signPk, spendPk, viewSk []byte) (bool, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	epk, epkLen := cbytes(ephemeralPk)
	spk, spkLen := cbytes(signPk)
	sp, spLen := cbytes(spendPk)
	vsk, vskLen := cbytes(viewSk)
	var owned C.uint8_t
	if err := check(C.ct_is_note_owner(epk, epkLen, spk, spkLen, sp, spLen, vsk, vskLen, &owned)); err != nil {
		return false, err
	}
	return owned != 0, nil
}
