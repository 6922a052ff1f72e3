package shell

import (
	"context"
	"testing"

	"github.com/smileynet/contactbook/internal/manager"
	"github.com/smileynet/contactbook/internal/storage"
)

// newTestDispatcher returns a dispatcher over an empty in-memory book.
func newTestDispatcher(t *testing.T) (*manager.Dispatcher, *storage.Memory) {
	t.Helper()
	gw := storage.NewMemory()
	m, err := manager.New(context.Background(), gw)
	if err != nil {
		t.Fatalf("manager.New() error = %v", err)
	}
	return manager.NewDispatcher(m), gw
}
