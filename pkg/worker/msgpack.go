// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package worker

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

func unmarshalFrame(body []byte, v interface{}) error {
	if err := msgpack.Unmarshal(body, v); err != nil {
		return fmt.Errorf("worker: unmarshal frame: %w", err)
	}
	return nil
}
