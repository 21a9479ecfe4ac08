package main

import (
	"github.com/kysee/privacy/config"
	"github.com/kysee/privacy/utxo/confidential"
	"github.com/kysee/privacy/utxo/confidential/softengine"
	"github.com/pkg/errors"
)

// nativeEngine is set when the binary is built with the confidentialtx tag.
var nativeEngine func() confidential.Engine

func (a *app) engine() (confidential.Engine, error) {
	switch a.cfg.Engine {
	case config.EngineNative:
		if nativeEngine == nil {
			return nil, errors.New("native engine requested but privacyctl was built without the confidentialtx tag")
		}
		return nativeEngine(), nil
	default:
		return softengine.New(), nil
	}
}
