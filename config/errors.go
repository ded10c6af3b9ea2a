// SPDX-License-Identifier: MIT

package config

import "errors"

// ErrInvalid wraps every validation failure of a Config.
var ErrInvalid = errors.New("config: invalid configuration")
