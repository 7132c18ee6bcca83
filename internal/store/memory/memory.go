package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopops/order-csv-exporter/internal/model"
	"github.com/shopops/order-csv-exporter/internal/store"
)

// Store is an in-memory implementation of the store interfaces, used by unit
// tests and dry-run exports. Semantics match the postgres store: the exported
// flag is tri-state (absent / false / true) and flag-absent records are
// treated as already exported.
type Store struct {
	mu      sync.Mutex
	records []model.Record
	flags   map[flagKey]bool
	history map[int64]*model.ExportHistory
	nextID  int64
}

type flagKey struct {
	kind model.RecordKind
	id   int64
}

func New(records ...model.Record) *Store {
	return &Store{
		records: records,
		flags:   make(map[flagKey]bool),
		history: make(map[int64]*model.ExportHistory),
	}
}

func (s *Store) ExportState() store.ExportStateStore { return s }
func (s *Store) History() store.HistoryStore         { return s }
func (s *Store) Records() store.RecordSource         { return s }
func (s *Store) Open() error                         { return nil }
func (s *Store) Close() error                        { return nil }

// Add appends records to the source.
func (s *Store) Add(records ...model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

// ------------ ExportStateStore ------------ //

func (s *Store) IsExported(ctx context.Context, kind model.RecordKind, recordID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exported, ok := s.flags[flagKey{kind, recordID}]
	if !ok {
		return true, nil
	}
	return exported, nil
}

func (s *Store) SetExported(ctx context.Context, kind model.RecordKind, recordID int64, exported bool) error {
	return s.SetExportedAll(ctx, kind, []int64{recordID}, exported)
}

func (s *Store) SetExportedAll(ctx context.Context, kind model.RecordKind, recordIDs []int64, exported bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range recordIDs {
		s.flags[flagKey{kind, id}] = exported
	}
	return nil
}

func (s *Store) CountUnexported(ctx context.Context, filter model.ExportFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, r := range s.records {
		if !filter.Matches(r) {
			continue
		}
		if exported, ok := s.flags[flagKey{r.Kind, r.ID}]; ok && !exported {
			count++
		}
	}
	return count, nil
}

// ------------ RecordSource ------------ //

func (s *Store) Query(ctx context.Context, filter model.ExportFilter, unexportedOnly bool) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Record
	for _, r := range s.records {
		if !filter.Matches(r) {
			continue
		}
		if unexportedOnly {
			if exported, ok := s.flags[flagKey{r.Kind, r.ID}]; !ok || exported {
				continue
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ------------ HistoryStore ------------ //

func (s *Store) Insert(ctx context.Context, input *model.NewExportHistory) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.history[s.nextID] = &model.ExportHistory{
		ID:        s.nextID,
		JobID:     input.JobID,
		Filename:  input.Filename,
		Kind:      input.Kind,
		Transport: input.Transport,
		Attempted: input.Attempted,
		StartedAt: input.StartedAt,
		UpdatedAt: input.StartedAt,
		Status:    input.Status,
	}
	return s.nextID, nil
}

func (s *Store) Update(ctx context.Context, input *model.UpdateExportHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.history[input.ID]
	if !ok {
		return fmt.Errorf("no export history record found for id=%d", input.ID)
	}
	row.Status = input.Status
	row.Bytes = input.Bytes
	if input.ErrorKind != nil {
		row.ErrorKind = input.ErrorKind
	}
	row.UpdatedAt = time.Now().UnixMilli()
	return nil
}

// HistoryRow returns a copy of a history row for assertions.
func (s *Store) HistoryRow(id int64) (model.ExportHistory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.history[id]
	if !ok {
		return model.ExportHistory{}, false
	}
	return *row, true
}
