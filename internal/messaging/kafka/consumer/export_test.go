package consumer

import "time"

// SetRetryBackoff shortens the store retry delays for tests.
func SetRetryBackoff(initial, max time.Duration) func() {
	prevInitial, prevMax := retryInitial, retryMax
	retryInitial, retryMax = initial, max
	return func() { retryInitial, retryMax = prevInitial, prevMax }
}
