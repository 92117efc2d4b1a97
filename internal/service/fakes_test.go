package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"estimate-service/internal/models"
	"estimate-service/internal/store"
	"estimate-service/internal/util"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	util.SetLogger(zap.NewNop())
	os.Exit(m.Run())
}

var errInjected = errors.New("injected failure")

// faultyStore wraps Memory and fails selected operations
type faultyStore struct {
	*store.Memory

	failFind          bool
	failCreatePrice   bool
	failVersionItems  bool
	failVersion       bool
	failGetContract   int // fail GetContract from this call number on; 0 disables
	getContractCalls  int
	createPriceBefore func(price *models.StandardPrice)
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Memory: store.NewMemory()}
}

func (f *faultyStore) FindStandardPrice(ctx context.Context, category, productName string) (*models.StandardPrice, error) {
	if f.failFind {
		return nil, errInjected
	}
	return f.Memory.FindStandardPrice(ctx, category, productName)
}

func (f *faultyStore) CreateStandardPrice(ctx context.Context, price *models.StandardPrice) error {
	if f.createPriceBefore != nil {
		f.createPriceBefore(price)
	}
	if f.failCreatePrice {
		return errInjected
	}
	return f.Memory.CreateStandardPrice(ctx, price)
}

func (f *faultyStore) CreateQuoteVersionItems(ctx context.Context, items []models.QuoteVersionItem) error {
	if f.failVersionItems {
		return errInjected
	}
	return f.Memory.CreateQuoteVersionItems(ctx, items)
}

func (f *faultyStore) CreateContractVersion(ctx context.Context, version *models.ContractVersion) error {
	if f.failVersion {
		return errInjected
	}
	return f.Memory.CreateContractVersion(ctx, version)
}

func (f *faultyStore) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	f.getContractCalls++
	if f.failGetContract > 0 && f.getContractCalls >= f.failGetContract {
		return nil, errInjected
	}
	return f.Memory.GetContract(ctx, id)
}

type recordedEvent struct {
	kind string
	id   int64
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (f *fakeEvents) record(kind string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{kind: kind, id: id})
	return f.err
}

func (f *fakeEvents) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.kind)
	}
	return out
}

func (f *fakeEvents) PublishEstimateRequested(_ context.Context, req *models.EstimateRequest) error {
	return f.record(models.EventTypeEstimateRequested, req.ID)
}

func (f *fakeEvents) PublishCatalogPriceUpdated(_ context.Context, price *models.StandardPrice, _ int64, _ bool) error {
	return f.record(models.EventTypeCatalogPriceUpdated, price.ID)
}

func (f *fakeEvents) PublishQuoteVersionSaved(_ context.Context, version *models.QuoteVersion) error {
	return f.record(models.EventTypeQuoteVersionSaved, version.ID)
}

func (f *fakeEvents) PublishContractSigned(_ context.Context, contract *models.Contract) error {
	return f.record(models.EventTypeContractSigned, contract.ID)
}

type sentNotification struct {
	kind      string
	recipient string
	data      map[string]string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, kind, recipient string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNotification{kind: kind, recipient: recipient, data: data})
	return nil
}

type fakeUploader struct {
	path        string
	data        []byte
	contentType string
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, path string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.path, f.data, f.contentType = path, data, contentType
	return "https://storage.example.com/bucket/" + path, nil
}

type fakeCache struct {
	mu          sync.Mutex
	data        []byte
	ttl         time.Duration
	gets        int
	invalidated int
}

func (f *fakeCache) GetCatalog(context.Context) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	return f.data, f.data != nil, nil
}

func (f *fakeCache) SetCatalog(_ context.Context, data []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data, f.ttl = data, ttl
	return nil
}

func (f *fakeCache) InvalidateCatalog(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = nil
	f.invalidated++
	return nil
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }
