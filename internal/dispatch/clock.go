package dispatch

import "time"

// nowFn is overridden in tests for deterministic timestamps.
var nowFn = time.Now
