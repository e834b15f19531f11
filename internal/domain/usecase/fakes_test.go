package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"productimporter/internal/domain/entity"
	"productimporter/pkg/csvutil"
)

// fakeProductStore mirrors the upsert policy of the gorm repo against an
// in-memory map, committing each batch atomically.
type fakeProductStore struct {
	mu          sync.Mutex
	products    map[string]entity.Product
	batchCalls  int
	failAtBatch int // 1-based; 0 means never fail
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[string]entity.Product)}
}

func (s *fakeProductStore) UpsertBatch(_ context.Context, rows []csvutil.Row) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batchCalls++
	if s.failAtBatch != 0 && s.batchCalls == s.failAtBatch {
		return 0, errors.New("store unavailable")
	}

	staged := make(map[string]entity.Product, len(rows))
	for _, row := range rows {
		sku := entity.NormalizeSku(row.Sku)
		p, ok := staged[sku]
		if !ok {
			p, ok = s.products[sku]
		}
		if ok {
			entity.ApplyRow(&p, row)
		} else {
			p = entity.NewProduct(row)
		}
		staged[sku] = p
	}
	for sku, p := range staged {
		s.products[sku] = p
	}

	return len(rows), nil
}

func (s *fakeProductStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

func (s *fakeProductStore) get(sku string) (entity.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[sku]
	return p, ok
}

type fakeJobLedger struct {
	mu   sync.Mutex
	jobs map[string]*entity.ImportJob
}

func newFakeJobLedger() *fakeJobLedger {
	return &fakeJobLedger{jobs: make(map[string]*entity.ImportJob)}
}

func (l *fakeJobLedger) CreateJob(_ context.Context, job *entity.ImportJob) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := *job
	l.jobs[job.JobID] = &copied
	return nil
}

func (l *fakeJobLedger) UpdateJobStatus(_ context.Context, jobID string, status entity.JobStatus, processed int, errText string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	job, ok := l.jobs[jobID]
	if !ok {
		job = &entity.ImportJob{JobID: jobID}
		l.jobs[jobID] = job
	}
	job.Status = status
	job.ProcessedRows = processed
	job.Error = errText
	return nil
}

func (l *fakeJobLedger) GetJob(_ context.Context, jobID string) (*entity.ImportJob, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	job, ok := l.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	copied := *job
	return &copied, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []json.RawMessage
	failAll   bool
}

func (p *fakePublisher) Publish(_ context.Context, body json.RawMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAll {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, body)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}
