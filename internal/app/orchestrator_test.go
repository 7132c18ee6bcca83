package app

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
	"github.com/shopops/order-csv-exporter/internal/store/memory"
)

type fakeTransport struct {
	mu        sync.Mutex
	name      string
	failWith  error
	block     chan struct{}
	delivered []string
}

func (t *fakeTransport) Name() string {
	if t.name == "" {
		return string(model.TransportLocalFile)
	}
	return t.name
}

func (t *fakeTransport) Deliver(ctx context.Context, payload []byte, filename string) error {
	if t.block != nil {
		<-t.block
	}
	if t.failWith != nil {
		return t.failWith
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delivered = append(t.delivered, filename)
	return nil
}

func (t *fakeTransport) TestConnection(ctx context.Context) (string, error) {
	return "ok", nil
}

func testOrder(id int64, status string) model.Record {
	return model.Record{
		ID:   id,
		Kind: model.KindOrder,
		Order: &model.Order{
			ID:        id,
			Number:    strconv.FormatInt(id, 10),
			CreatedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
			Status:    status,
		},
	}
}

func completedOrdersJob(tr *fakeTransport, policy model.MarkPolicy) ExportJob {
	return ExportJob{
		Filter:           model.ExportFilter{Kind: model.KindOrder, Statuses: []string{"completed"}},
		Format:           model.FormatDefault,
		FilenameTemplate: "orders-%%order_ids%%.csv",
		Transport:        tr,
		MarkPolicy:       policy,
	}
}

func TestRunDeliversAndMarksAfter(t *testing.T) {
	ctx := context.Background()
	s := memory.New(testOrder(1, "completed"), testOrder(2, "completed"), testOrder(3, "pending"))
	o := NewOrchestrator(s)

	tr := &fakeTransport{}
	result, err := o.Run(ctx, completedOrdersJob(tr, model.MarkAfterDeliver))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 2, result.Succeeded)
	assert.Zero(t, result.Failed)
	assert.Equal(t, "orders-1_2.csv", result.Filename)
	assert.Equal(t, []string{"orders-1_2.csv"}, tr.delivered)

	for _, id := range []int64{1, 2} {
		exported, err := s.IsExported(ctx, model.KindOrder, id)
		require.NoError(t, err)
		assert.True(t, exported, "order %d should be marked exported", id)
	}

	row, ok := s.HistoryRow(1)
	require.True(t, ok)
	assert.Equal(t, model.ExportStatusDone, row.Status)
	assert.Equal(t, result.Bytes, row.Bytes)
}

func TestRunEmptyBatchShortCircuits(t *testing.T) {
	s := memory.New(testOrder(1, "pending"))
	o := NewOrchestrator(s)

	tr := &fakeTransport{}
	result, err := o.Run(context.Background(), completedOrdersJob(tr, model.MarkAfterDeliver))
	require.NoError(t, err)

	assert.Zero(t, result.Attempted)
	assert.Empty(t, tr.delivered, "nothing should be delivered for an empty batch")

	// The run is still recorded.
	row, ok := s.HistoryRow(1)
	require.True(t, ok)
	assert.Zero(t, row.Attempted)
	assert.Equal(t, model.ExportStatusDone, row.Status)
}

func TestRunMarkAfterDeliverLeavesFlagsOnFailure(t *testing.T) {
	ctx := context.Background()
	s := memory.New(testOrder(1, "completed"), testOrder(2, "completed"))
	require.NoError(t, s.SetExportedAll(ctx, model.KindOrder, []int64{1, 2}, false))
	o := NewOrchestrator(s)

	tr := &fakeTransport{failWith: apperr.NewTransportConnectError("ftp", assert.AnError)}
	_, err := o.Run(ctx, completedOrdersJob(tr, model.MarkAfterDeliver))
	require.Error(t, err)

	var connectErr *apperr.TransportConnectError
	require.ErrorAs(t, err, &connectErr)

	for _, id := range []int64{1, 2} {
		exported, err := s.IsExported(ctx, model.KindOrder, id)
		require.NoError(t, err)
		assert.False(t, exported, "order %d must stay unexported", id)
	}

	row, ok := s.HistoryRow(1)
	require.True(t, ok)
	assert.Equal(t, model.ExportStatusFailed, row.Status)
	require.NotNil(t, row.ErrorKind)
	assert.Equal(t, string(model.ErrKindTransportConnect), *row.ErrorKind)
}

func TestRunMarkBeforeDeliverKeepsMarksOnFailure(t *testing.T) {
	ctx := context.Background()
	s := memory.New(testOrder(1, "completed"))
	require.NoError(t, s.SetExported(ctx, model.KindOrder, 1, false))
	o := NewOrchestrator(s)

	tr := &fakeTransport{failWith: apperr.NewTransportDeliveryError("ftp", assert.AnError)}
	_, err := o.Run(ctx, completedOrdersJob(tr, model.MarkBeforeDeliver))
	require.Error(t, err)

	// At-least-once: the mark set before delivery is not rolled back.
	exported, err := s.IsExported(ctx, model.KindOrder, 1)
	require.NoError(t, err)
	assert.True(t, exported)
}

func TestRunDoNotMarkLeavesFlagsUntouched(t *testing.T) {
	ctx := context.Background()
	s := memory.New(testOrder(1, "completed"))
	require.NoError(t, s.SetExported(ctx, model.KindOrder, 1, false))
	o := NewOrchestrator(s)

	tr := &fakeTransport{}
	_, err := o.Run(ctx, completedOrdersJob(tr, model.DoNotMark))
	require.NoError(t, err)

	exported, err := s.IsExported(ctx, model.KindOrder, 1)
	require.NoError(t, err)
	assert.False(t, exported)
}

func TestRunRejectsConcurrentRunsForSameKey(t *testing.T) {
	ctx := context.Background()
	s := memory.New(testOrder(1, "completed"))
	o := NewOrchestrator(s)

	block := make(chan struct{})
	slow := &fakeTransport{block: block}

	firstDone := make(chan error, 1)
	go func() {
		_, err := o.Run(ctx, completedOrdersJob(slow, model.DoNotMark))
		firstDone <- err
	}()

	// Wait for the first run to take the lock and reach delivery.
	require.Eventually(t, func() bool {
		_, err := o.Run(ctx, completedOrdersJob(&fakeTransport{}, model.DoNotMark))
		var rejected *apperr.ConcurrentRunRejected
		return apperr.As(err, &rejected)
	}, time.Second, 10*time.Millisecond)

	close(block)
	require.NoError(t, <-firstDone)

	// With the first run finished the key is free again.
	_, err := o.Run(ctx, completedOrdersJob(&fakeTransport{}, model.DoNotMark))
	assert.NoError(t, err)
}

func TestRunDifferentKeysDoNotExcludeEachOther(t *testing.T) {
	ctx := context.Background()
	s := memory.New(testOrder(1, "completed"), testOrder(2, "pending"))
	o := NewOrchestrator(s)

	block := make(chan struct{})
	slow := &fakeTransport{block: block}

	done := make(chan error, 1)
	go func() {
		_, err := o.Run(ctx, completedOrdersJob(slow, model.DoNotMark))
		done <- err
	}()

	pendingJob := ExportJob{
		Filter:           model.ExportFilter{Kind: model.KindOrder, Statuses: []string{"pending"}},
		Format:           model.FormatDefault,
		FilenameTemplate: "pending.csv",
		Transport:        &fakeTransport{},
		MarkPolicy:       model.DoNotMark,
	}
	require.Eventually(t, func() bool {
		_, err := o.Run(ctx, pendingJob)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	close(block)
	require.NoError(t, <-done)
}

func TestRunRefusesMarkAfterDeliverWithDownload(t *testing.T) {
	s := memory.New(testOrder(1, "completed"))
	o := NewOrchestrator(s)

	tr := &fakeTransport{name: string(model.TransportDownload)}
	_, err := o.Run(context.Background(), completedOrdersJob(tr, model.MarkAfterDeliver))
	require.ErrorIs(t, err, apperr.ErrMarkPolicyUnsupported)
	assert.Empty(t, tr.delivered)
}
