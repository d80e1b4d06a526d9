package handler

import (
    "context"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/amirulhm/cinema-booking-core/internal/model"
    "github.com/amirulhm/cinema-booking-core/internal/repository"
)

// memStore is an in-memory OrderStore + PaymentLogStore used by handler
// tests.  It reproduces the store-level guarantees the handlers rely on:
// uniqueness on the reference number under concurrent creates and
// compare-and-set semantics on payment status updates.
type memStore struct {
    mu     sync.Mutex
    byRef  map[string]*repository.OrderRecord
    nextID uint64
    logs   []repository.PaymentLogRecord
}

func newMemStore() *memStore {
    return &memStore{byRef: make(map[string]*repository.OrderRecord)}
}

func (s *memStore) CreateIdempotent(_ context.Context, rec *repository.OrderRecord, logRec *repository.PaymentLogRecord) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if existing, ok := s.byRef[rec.ReferenceNo]; ok {
        *rec = *existing
        return false, nil
    }
    s.nextID++
    rec.ID = s.nextID
    now := time.Now().UTC()
    rec.CreatedAt = now
    rec.UpdatedAt = now
    stored := *rec
    s.byRef[rec.ReferenceNo] = &stored
    if logRec != nil {
        logRec.OrderID = &rec.ID
        s.logs = append(s.logs, *logRec)
    }
    return true, nil
}

func (s *memStore) GetByReference(_ context.Context, referenceNo string) (*repository.OrderRecord, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if rec, ok := s.byRef[referenceNo]; ok {
        cp := *rec
        return &cp, nil
    }
    return nil, repository.ErrOrderNotFound
}

func (s *memStore) GetByID(_ context.Context, id uint64) (*repository.OrderRecord, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, rec := range s.byRef {
        if rec.ID == id {
            cp := *rec
            return &cp, nil
        }
    }
    return nil, repository.ErrOrderNotFound
}

func (s *memStore) UpdatePaymentStatus(_ context.Context, id uint64, from, to model.PaymentStatus, method string) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, rec := range s.byRef {
        if rec.ID != id {
            continue
        }
        if rec.PaymentStatus != string(from) {
            return false, nil
        }
        rec.PaymentStatus = string(to)
        if method != "" {
            rec.PaymentMethod = method
        }
        rec.UpdatedAt = time.Now().UTC()
        return true, nil
    }
    return false, nil
}

func (s *memStore) Append(_ context.Context, rec *repository.PaymentLogRecord) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.nextID++
    rec.ID = s.nextID
    rec.CreatedAt = time.Now().UTC()
    s.logs = append(s.logs, *rec)
    return nil
}

func (s *memStore) List(_ context.Context, f repository.PaymentLogFilter) ([]repository.PaymentLogRecord, int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    matched := make([]repository.PaymentLogRecord, 0, len(s.logs))
    for _, rec := range s.logs {
        if f.Search != "" && !logMatchesSearch(rec, f.Search) {
            continue
        }
        if f.Status != "" && rec.Status != f.Status {
            continue
        }
        if f.IsSuccess != nil && rec.IsSuccess != *f.IsSuccess {
            continue
        }
        matched = append(matched, rec)
    }
    total := int64(len(matched))
    offset := (f.Page - 1) * f.Limit
    if offset >= len(matched) {
        return nil, total, nil
    }
    end := offset + f.Limit
    if end > len(matched) {
        end = len(matched)
    }
    return matched[offset:end], total, nil
}

// logMatchesSearch mirrors the repository's free-text LIKE over the
// reference number, transaction number and stringified order id.
func logMatchesSearch(rec repository.PaymentLogRecord, search string) bool {
    if strings.Contains(rec.ReferenceNo, search) || strings.Contains(rec.TransactionNo, search) {
        return true
    }
    return rec.OrderID != nil && strings.Contains(strconv.FormatUint(*rec.OrderID, 10), search)
}

func (s *memStore) orderCount() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return len(s.byRef)
}
