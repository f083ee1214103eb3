package record

import (
	"context"
	"fmt"
	"sync"

	"toorak_vpn/internal/model"
)

// MemoryRepo keeps records in process. Used when mongo is disabled.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]model.ProtectedRecord
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]model.ProtectedRecord)}
}

func (r *MemoryRepo) Create(_ context.Context, rec *model.ProtectedRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.MessageID]; ok {
		return fmt.Errorf("record %s already exists", rec.MessageID)
	}
	r.records[rec.MessageID] = *rec
	return nil
}

func (r *MemoryRepo) GetByMessageID(_ context.Context, messageID string) (*model.ProtectedRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[messageID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}
