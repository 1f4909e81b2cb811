package health

import (
	"context"
	"time"
)

// Pinger is the narrow interface objectstore.Store satisfies; health
// depends on this instead of importing objectstore directly so the
// package only knows about a small capability interface, never a
// concrete backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ObjectStoreChecker adapts an objectstore.Store's connectivity probe to
// the Checker interface, so /healthz can report it the same way any other
// dependency check is reported.
type ObjectStoreChecker struct {
	store Pinger
}

// NewObjectStoreChecker builds a Checker around a Pinger.
func NewObjectStoreChecker(store Pinger) *ObjectStoreChecker {
	return &ObjectStoreChecker{store: store}
}

func (c *ObjectStoreChecker) Type() CheckType {
	return CheckTypeDependency
}

func (c *ObjectStoreChecker) Check(ctx context.Context) Result {
	start := time.Now()
	err := c.store.Ping(ctx)
	result := Result{
		CheckedAt: start,
		Duration:  time.Since(start),
		Healthy:   err == nil,
	}
	if err != nil {
		result.Message = err.Error()
	} else {
		result.Message = "ok"
	}
	return result
}
