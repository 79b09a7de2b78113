package store

import (
	"fmt"
	"time"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// testEnv returns an Env with sequential ids and a clock that advances one
// minute per reading.
func testEnv() Env {
	var ids, ticks int
	return Env{
		Now: func() time.Time {
			ticks++
			return baseTime.Add(time.Duration(ticks) * time.Minute)
		},
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	}
}

func strPtr(s string) *string { return &s }
