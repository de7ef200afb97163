package poolmanager

import "errors"

var ErrNoEndpoints = errors.New("poolmanager: no endpoints configured")
