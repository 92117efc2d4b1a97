package service

import (
	"context"
	"sync"
	"time"

	"estimate-service/internal/models"
)

// EventPublisher publishes domain events. broker.EventPublisher implements it.
type EventPublisher interface {
	PublishEstimateRequested(ctx context.Context, req *models.EstimateRequest) error
	PublishCatalogPriceUpdated(ctx context.Context, price *models.StandardPrice, itemID int64, created bool) error
	PublishQuoteVersionSaved(ctx context.Context, version *models.QuoteVersion) error
	PublishContractSigned(ctx context.Context, contract *models.Contract) error
}

// Notifier dispatches an email notification
type Notifier interface {
	Notify(ctx context.Context, kind, recipient string, data map[string]string) error
}

// Uploader stores a binary artifact and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// KeyLocker serializes work on one key. The returned func releases the lock.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// CatalogCache holds the serialized catalog listing
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]byte, bool, error)
	SetCatalog(ctx context.Context, data []byte, ttl time.Duration) error
	InvalidateCatalog(ctx context.Context) error
}

type noopEvents struct{}

func (noopEvents) PublishEstimateRequested(context.Context, *models.EstimateRequest) error { return nil }
func (noopEvents) PublishCatalogPriceUpdated(context.Context, *models.StandardPrice, int64, bool) error {
	return nil
}
func (noopEvents) PublishQuoteVersionSaved(context.Context, *models.QuoteVersion) error { return nil }
func (noopEvents) PublishContractSigned(context.Context, *models.Contract) error      { return nil }

// LocalKeyLocker is an in-process KeyLocker holding one mutex per key.
// Mutexes are dropped once no goroutine holds or waits on them.
type LocalKeyLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocalKeyLocker() *LocalKeyLocker {
	return &LocalKeyLocker{locks: make(map[string]*keyLock)}
}

func (l *LocalKeyLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}, nil
}
