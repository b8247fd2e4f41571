package main

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain fails the package when a run leaves goroutines behind: the
// concurrent loader, the batch feeder and SQL pools must all shut down.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
