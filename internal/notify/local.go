package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// LocalDelivery is an in-process Delivery used by the dev server and tests.
// It records scheduled reminders instead of talking to a platform API and
// can simulate one firing via Fire.
type LocalDelivery struct {
	mu      sync.Mutex
	pending map[string]Request
	// OnFired, when set, is invoked with the handle after Fire. The caller
	// typically routes this into MarkSent.
	OnFired func(handle string)
}

func NewLocalDelivery() *LocalDelivery {
	return &LocalDelivery{pending: make(map[string]Request)}
}

func (d *LocalDelivery) Schedule(ctx context.Context, req Request) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	handle := uuid.NewString()
	d.pending[handle] = req
	return handle, nil
}

func (d *LocalDelivery) Cancel(ctx context.Context, handle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pending[handle]; !ok {
		return errors.New("notify: unknown handle")
	}
	delete(d.pending, handle)
	return nil
}

func (d *LocalDelivery) CancelAll(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = make(map[string]Request)
	return nil
}

func (d *LocalDelivery) Pending(ctx context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	handles := make([]string, 0, len(d.pending))
	for h := range d.pending {
		handles = append(handles, h)
	}
	return handles, nil
}

// Fire simulates platform delivery of one pending reminder.
func (d *LocalDelivery) Fire(handle string) bool {
	d.mu.Lock()
	_, ok := d.pending[handle]
	if ok {
		delete(d.pending, handle)
	}
	fired := d.OnFired
	d.mu.Unlock()
	if ok && fired != nil {
		fired(handle)
	}
	return ok
}

var _ Delivery = (*LocalDelivery)(nil)
