// Package providers holds the samber/do constructors for every runtime
// component. Components with a lifecycle are wrapped in a handle that
// implements do.ShutdownerWithError.
package providers

import "time"

const shutdownTimeout = 10 * time.Second
