package pipeline

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ReceiptTracker/internal/entity"
	"ReceiptTracker/pkg/imaging"
	"ReceiptTracker/pkg/log"
	"ReceiptTracker/pkg/ocr"

	"golang.org/x/net/context"
)

type fakeEngine struct {
	recognize func(ctx context.Context, image []byte, opts ocr.Options) (ocr.Result, error)
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, image []byte, opts ocr.Options) (ocr.Result, error) {
	return f.recognize(ctx, image, opts)
}

type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string][]entity.ProcessingRecord
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[string][]entity.ProcessingRecord)}
}

func (f *fakeRecordStore) SetRecord(ctx context.Context, record entity.ProcessingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.ReceiptID] = append(f.records[record.ReceiptID], record)
	return nil
}

func (f *fakeRecordStore) GetRecord(ctx context.Context, receiptID string) (entity.ProcessingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	history := f.records[receiptID]
	if len(history) == 0 {
		return entity.ProcessingRecord{}, errors.New("not found")
	}
	return history[len(history)-1], nil
}

func (f *fakeRecordStore) DeleteRecord(ctx context.Context, receiptID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, receiptID)
	return nil
}

func (f *fakeRecordStore) last(t *testing.T, receiptID string) entity.ProcessingRecord {
	t.Helper()
	rec, err := f.GetRecord(context.Background(), receiptID)
	if err != nil {
		t.Fatalf("no processing record for %s", receiptID)
	}
	return rec
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 24, 24))
	for i := range img.Pix {
		if i%5 == 0 {
			img.Pix[i] = 20
		} else {
			img.Pix[i] = 230
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestRunSuccess(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	store := newFakeRecordStore()
	engine := &fakeEngine{
		recognize: func(ctx context.Context, image []byte, opts ocr.Options) (ocr.Result, error) {
			return ocr.Result{PlainText: "TOTAL 12.50", Confidence: 0.9}, nil
		},
	}

	p := New(engine, store, 2, log.NewLogger())

	res, err := p.Run(context.Background(), Request{
		ReceiptID: "r1",
		Data:      testPNG(t),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.PlainText != "TOTAL 12.50" {
		t.Fatalf("unexpected text: %q", res.PlainText)
	}
	if res.Width != 24 || res.Height != 24 {
		t.Fatalf("unexpected dimensions: %dx%d", res.Width, res.Height)
	}
	if res.Degraded {
		t.Fatalf("run should not be degraded: %+v", res.Warnings)
	}

	record := store.last(t, "r1")
	if record.Status != entity.ProcessingSucceeded {
		t.Fatalf("unexpected record status: %s", record.Status)
	}
	if record.FinishedAt == nil {
		t.Fatalf("record has no finish time")
	}
}

func TestRunCorruptDataFailsWithCode(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	store := newFakeRecordStore()
	engine := &fakeEngine{
		recognize: func(ctx context.Context, image []byte, opts ocr.Options) (ocr.Result, error) {
			t.Fatalf("engine must not run for undecodable input")
			return ocr.Result{}, nil
		},
	}

	p := New(engine, store, 1, log.NewLogger())

	data := testPNG(t)[:16]
	_, err := p.Run(context.Background(), Request{ReceiptID: "r2", Data: data})
	if !errors.Is(err, imaging.ErrCorruptData) {
		t.Fatalf("expected ErrCorruptData, got %v", err)
	}

	record := store.last(t, "r2")
	if record.Status != entity.ProcessingFailed {
		t.Fatalf("unexpected record status: %s", record.Status)
	}
	if record.ErrorCode != "CORRUPT_DATA" {
		t.Fatalf("unexpected error code: %s", record.ErrorCode)
	}
}

func TestRunQueuesBeyondCapacity(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	const capacity = 2
	const runs = 8

	var inFlight, peak int64
	engine := &fakeEngine{
		recognize: func(ctx context.Context, image []byte, opts ocr.Options) (ocr.Result, error) {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return ocr.Result{PlainText: "ok"}, nil
		},
	}

	p := New(engine, newFakeRecordStore(), capacity, log.NewLogger())
	data := testPNG(t)

	var wg sync.WaitGroup
	errs := make(chan error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Run(context.Background(), Request{Data: data})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	if got := atomic.LoadInt64(&peak); got > capacity {
		t.Fatalf("observed %d concurrent runs, capacity is %d", got, capacity)
	}
}

func TestRunCanceledWhileQueued(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	release := make(chan struct{})
	engine := &fakeEngine{
		recognize: func(ctx context.Context, image []byte, opts ocr.Options) (ocr.Result, error) {
			<-release
			return ocr.Result{}, nil
		},
	}

	p := New(engine, newFakeRecordStore(), 1, log.NewLogger())
	data := testPNG(t)

	started := make(chan struct{})
	go func() {
		close(started)
		p.Run(context.Background(), Request{Data: data})
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, Request{Data: data})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(release)
}

func TestRunEngineTimeoutCode(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	store := newFakeRecordStore()
	engine := &fakeEngine{
		recognize: func(ctx context.Context, image []byte, opts ocr.Options) (ocr.Result, error) {
			return ocr.Result{}, ocr.ErrRecognitionTimeout
		},
	}

	p := New(engine, store, 1, log.NewLogger())

	_, err := p.Run(context.Background(), Request{ReceiptID: "r3", Data: testPNG(t)})
	if !errors.Is(err, ocr.ErrRecognitionTimeout) {
		t.Fatalf("expected ErrRecognitionTimeout, got %v", err)
	}

	record := store.last(t, "r3")
	if record.ErrorCode != "RECOGNITION_TIMEOUT" {
		t.Fatalf("unexpected error code: %s", record.ErrorCode)
	}
}

func TestRunBlankImageYieldsEmptyResult(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	engine := &fakeEngine{
		recognize: func(ctx context.Context, image []byte, opts ocr.Options) (ocr.Result, error) {
			return ocr.Result{}, nil
		},
	}

	p := New(engine, newFakeRecordStore(), 1, log.NewLogger())

	res, err := p.Run(context.Background(), Request{ReceiptID: "r4", Data: testPNG(t)})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.PlainText != "" || len(res.Regions) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestCapacityDefaultsToCPUCount(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	p := New(&fakeEngine{}, nil, 0, log.NewLogger())
	if p.Capacity() < 1 {
		t.Fatalf("capacity = %d", p.Capacity())
	}
}
