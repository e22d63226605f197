package receiptService

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"ReceiptTracker/internal/api/receipt"
	receiptRepository "ReceiptTracker/internal/api/receipt/repository"
	"ReceiptTracker/internal/entity"
	"ReceiptTracker/internal/pipeline"
	"ReceiptTracker/pkg/redis"
	"ReceiptTracker/pkg/storage"
	"ReceiptTracker/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type fakeReceiptStore struct {
	mu       sync.Mutex
	receipts map[string]entity.Receipt
	items    map[string][]entity.LineItem
}

func (f *fakeReceiptStore) CreateReceipt(ctx context.Context, rec entity.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts[rec.ID] = rec
	return nil
}

func (f *fakeReceiptStore) GetByID(ctx context.Context, id string) (entity.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.receipts[id]
	if !ok {
		return entity.Receipt{}, receipt.ErrReceiptNotFound
	}
	return rec, nil
}

func (f *fakeReceiptStore) ListByUser(ctx context.Context, userID string) ([]entity.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Receipt
	for _, rec := range f.receipts {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeReceiptStore) CountByUser(ctx context.Context, userID string) (int, error) {
	recs, _ := f.ListByUser(ctx, userID)
	return len(recs), nil
}

func (f *fakeReceiptStore) UpdateReceipt(ctx context.Context, rec entity.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.receipts[rec.ID]
	if !ok {
		return receipt.ErrReceiptNotFound
	}
	stored.Vendor = rec.Vendor
	stored.Amount = rec.Amount
	stored.Date = rec.Date
	stored.Category = rec.Category
	stored.RawText = rec.RawText
	f.receipts[rec.ID] = stored
	return nil
}

func (f *fakeReceiptStore) DeleteReceipt(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.receipts, id)
	return nil
}

func (f *fakeReceiptStore) ListByReceipt(ctx context.Context, receiptID string) ([]entity.LineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[receiptID], nil
}

func (f *fakeReceiptStore) ReplaceForReceipt(ctx context.Context, receiptID string, items []entity.LineItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[receiptID] = items
	return nil
}

type fakeReceiptRepository struct {
	store *fakeReceiptStore
}

func (f *fakeReceiptRepository) NewClient(tx bool) (receiptRepository.Client, error) {
	return receiptRepository.Client{
		Receipts:  f.store,
		LineItems: f.store,
		Commit:    func() error { return nil },
		Rollback:  func() error { return nil },
	}, nil
}

type fakePipeline struct {
	result *pipeline.Result
	err    error
}

func (f *fakePipeline) Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.ReceiptID = req.ReceiptID
	return &res, nil
}

func (f *fakePipeline) Capacity() int { return 1 }

type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string]entity.ProcessingRecord
}

func (f *fakeRecordStore) SetRecord(ctx context.Context, record entity.ProcessingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.ReceiptID] = record
	return nil
}

func (f *fakeRecordStore) GetRecord(ctx context.Context, receiptID string) (entity.ProcessingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[receiptID]
	if !ok {
		return entity.ProcessingRecord{}, redis.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeRecordStore) DeleteRecord(ctx context.Context, receiptID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, receiptID)
	return nil
}

func newTestService(t *testing.T, pl pipeline.IPipeline) (IReceiptService, *fakeReceiptStore, storage.Storage) {
	t.Helper()
	store := &fakeReceiptStore{
		receipts: make(map[string]entity.Receipt),
		items:    make(map[string][]entity.LineItem),
	}
	fileStorage, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("storage.NewLocal() error = %v", err)
	}
	records := &fakeRecordStore{records: make(map[string]entity.ProcessingRecord)}

	svc := New(logrus.New(), &fakeReceiptRepository{store: store}, fileStorage, pl, records, nil, utils.New())
	return svc, store, fileStorage
}

func multipartImage(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", "image/png")
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	if _, err := part.Write([]byte("not a real png, storage does not care")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	w.Close()

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm() error = %v", err)
	}
	return form.File["file"][0]
}

func TestUploadReceiptQuota(t *testing.T) {
	svc, store, _ := newTestService(t, &fakePipeline{})
	user := entity.UserLoginData{ID: "u1", Email: "u1@example.com"}
	ctx := context.Background()

	for i := 0; i < entity.MaxReceiptsPerUser; i++ {
		store.receipts[fmt.Sprintf("seed-%d", i)] = entity.Receipt{ID: fmt.Sprintf("seed-%d", i), UserID: user.ID}
	}

	_, err := svc.UploadReceipt(ctx, user, multipartImage(t, "receipt.png"))
	if !errors.Is(err, receipt.ErrReceiptQuotaExceeded) {
		t.Fatalf("expected ErrReceiptQuotaExceeded, got %v", err)
	}
}

func TestUploadAndGetReceipt(t *testing.T) {
	svc, _, fileStorage := newTestService(t, &fakePipeline{})
	user := entity.UserLoginData{ID: "u1", Email: "u1@example.com"}
	ctx := context.Background()

	res, err := svc.UploadReceipt(ctx, user, multipartImage(t, "lunch.png"))
	if err != nil {
		t.Fatalf("UploadReceipt() error = %v", err)
	}
	if res.FileName != "lunch.png" {
		t.Fatalf("unexpected file name: %q", res.FileName)
	}

	rec, err := svc.GetReceipt(ctx, user, res.ID)
	if err != nil {
		t.Fatalf("GetReceipt() error = %v", err)
	}
	if rec.UserID != user.ID {
		t.Fatalf("unexpected owner: %q", rec.UserID)
	}
	if _, err := fileStorage.Read(rec.FileHandle); err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
}

func TestGetReceiptOwnershipHidden(t *testing.T) {
	svc, store, _ := newTestService(t, &fakePipeline{})
	ctx := context.Background()

	store.receipts["r1"] = entity.Receipt{ID: "r1", UserID: "owner"}

	_, err := svc.GetReceipt(ctx, entity.UserLoginData{ID: "intruder"}, "r1")
	if !errors.Is(err, receipt.ErrReceiptNotFound) {
		t.Fatalf("expected ErrReceiptNotFound, got %v", err)
	}
}

func TestProcessReceiptPersistsExtraction(t *testing.T) {
	pl := &fakePipeline{
		result: &pipeline.Result{
			PlainText: "STARLIGHT CAFE\nBread Loaf Pcs 2 1,500.00\nTotal 2,350.50\n2024-03-15\n",
			Confidence: 0.87,
			Applied:    []string{"grayscale", "binarize"},
		},
	}
	svc, store, fileStorage := newTestService(t, pl)
	user := entity.UserLoginData{ID: "u1"}
	ctx := context.Background()

	handle, err := fileStorage.Save("r1.png", []byte("image bytes"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	store.receipts["r1"] = entity.Receipt{ID: "r1", UserID: "u1", FileHandle: handle, ContentType: "image/png"}

	res, err := svc.ProcessReceipt(ctx, user, "r1", receipt.ProcessReceiptRequest{})
	if err != nil {
		t.Fatalf("ProcessReceipt() error = %v", err)
	}

	if res.Status != entity.ProcessingSucceeded {
		t.Fatalf("unexpected status: %s", res.Status)
	}
	if res.Source != "rules" {
		t.Fatalf("unexpected extraction source: %s", res.Source)
	}
	if res.Receipt.Vendor != "STARLIGHT CAFE" {
		t.Fatalf("unexpected vendor: %q", res.Receipt.Vendor)
	}
	if res.Receipt.Amount != 2350.50 {
		t.Fatalf("unexpected amount: %v", res.Receipt.Amount)
	}
	if len(res.Receipt.LineItems) != 1 {
		t.Fatalf("unexpected line items: %+v", res.Receipt.LineItems)
	}

	stored := store.receipts["r1"]
	if stored.Vendor != "STARLIGHT CAFE" || stored.RawText == "" {
		t.Fatalf("extraction not persisted: %+v", stored)
	}
}

func TestProcessReceiptMissingFile(t *testing.T) {
	svc, store, _ := newTestService(t, &fakePipeline{})
	ctx := context.Background()

	store.receipts["r1"] = entity.Receipt{ID: "r1", UserID: "u1", FileHandle: "gone.png"}

	_, err := svc.ProcessReceipt(ctx, entity.UserLoginData{ID: "u1"}, "r1", receipt.ProcessReceiptRequest{})
	if !errors.Is(err, receipt.ErrFileMissing) {
		t.Fatalf("expected ErrFileMissing, got %v", err)
	}
}

func TestDeleteReceiptRemovesFile(t *testing.T) {
	svc, store, fileStorage := newTestService(t, &fakePipeline{})
	user := entity.UserLoginData{ID: "u1"}
	ctx := context.Background()

	handle, err := fileStorage.Save("r1.png", []byte("image bytes"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	store.receipts["r1"] = entity.Receipt{ID: "r1", UserID: "u1", FileHandle: handle}

	if err := svc.DeleteReceipt(ctx, user, "r1"); err != nil {
		t.Fatalf("DeleteReceipt() error = %v", err)
	}
	if _, ok := store.receipts["r1"]; ok {
		t.Fatalf("receipt row still present")
	}
	if _, err := fileStorage.Read(handle); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("stored file still present: %v", err)
	}
}
