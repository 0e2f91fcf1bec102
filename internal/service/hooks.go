package service

import "time"

// Hooks receives one event per aggregate operation.
type Hooks interface {
	ObserveOperation(op, status string, dur time.Duration)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
