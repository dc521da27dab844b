package inventory

import (
	"context"
	"sync"

	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// FakeSource is an in-memory Source for tests. Entities are keyed by sub-type.
type FakeSource struct {
	Entities   map[string][]models.Resource
	DataStores []models.Resource
	Networks   []models.Resource

	EntitiesErr   error
	DataStoresErr error
	NetworksErr   error
	PingErr       error

	// Gate, when set, blocks every call until it is closed.
	Gate chan struct{}

	mu    sync.Mutex
	calls map[string]int
}

// NewFake returns an empty FakeSource.
func NewFake() *FakeSource {
	return &FakeSource{Entities: map[string][]models.Resource{}}
}

// Calls returns how many times the named method was invoked.
func (f *FakeSource) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeSource) record(ctx context.Context, method string) error {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[method]++
	gate := f.Gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *FakeSource) GetEntities(ctx context.Context, q EntityQuery) ([]models.Resource, error) {
	if err := f.record(ctx, "GetEntities"); err != nil {
		return nil, err
	}
	if f.EntitiesErr != nil {
		return nil, f.EntitiesErr
	}
	return f.Entities[q.SubType], nil
}

func (f *FakeSource) GetDataStores(ctx context.Context, q DataStoreQuery) ([]models.Resource, error) {
	if err := f.record(ctx, "GetDataStores"); err != nil {
		return nil, err
	}
	return f.DataStores, f.DataStoresErr
}

func (f *FakeSource) ListNetworks(ctx context.Context, q NetworkQuery) ([]models.Resource, error) {
	if err := f.record(ctx, "ListNetworks"); err != nil {
		return nil, err
	}
	return f.Networks, f.NetworksErr
}

func (f *FakeSource) Ping(ctx context.Context) error {
	if err := f.record(ctx, "Ping"); err != nil {
		return err
	}
	return f.PingErr
}

func (f *FakeSource) Describe() string { return "fake" }
