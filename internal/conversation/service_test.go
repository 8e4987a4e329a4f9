package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulgroup/leadbot/internal/crm"
	"github.com/paulgroup/leadbot/internal/leads"
)

type captureDispatcher struct {
	mu        sync.Mutex
	snapshots []crm.Snapshot
	err       error
}

func (d *captureDispatcher) Send(_ context.Context, snap crm.Snapshot) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshots = append(d.snapshots, snap)
	return d.err
}

func newTestService(t *testing.T, dispatcher CRMDispatcher) (*Service, leads.Repository) {
	t.Helper()
	repo := leads.NewInMemoryRepository()
	engine := newTestEngine(nil, nil)
	return NewService(repo, engine, dispatcher, time.Second, nil, nil), repo
}

func TestServiceProcessPersistsProgress(t *testing.T) {
	svc, repo := newTestService(t, nil)
	ctx := context.Background()

	reply, err := svc.Process(ctx, "+15550001", "yes")
	require.NoError(t, err)
	assert.Contains(t, reply, "full name")

	stored, err := repo.GetByPhone(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, leads.StageAskName, stored.Stage)
}

func TestServiceProcessRejectsEmptyInput(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Process(context.Background(), "", "hi")
	assert.ErrorIs(t, err, leads.ErrMissingPhone)

	_, err = svc.Process(context.Background(), "+15550001", "   ")
	assert.Error(t, err)
}

func TestServiceDispatchesBookedLeadOnce(t *testing.T) {
	dispatcher := &captureDispatcher{}
	svc, _ := newTestService(t, dispatcher)
	ctx := context.Background()

	script := []string{"yes", "Jane Doe", "45", "TX", "no", "$80", "morning", "2", "yes"}
	for _, msg := range script {
		_, err := svc.Process(ctx, "+15550001", msg)
		require.NoError(t, err)
	}

	require.Len(t, dispatcher.snapshots, 1)
	snap := dispatcher.snapshots[0]
	assert.Equal(t, "Jane Doe", snap.Name)
	assert.Equal(t, "+15550001", snap.Phone)
	assert.Equal(t, 45, snap.Age)
	assert.Equal(t, "TX", snap.State)
	assert.Equal(t, "$80", snap.Budget)
	assert.Equal(t, "Thursday 10:00 AM", snap.AppointmentTime)
	assert.Len(t, snap.Ticket, 8)
	assert.Equal(t, "Booked", snap.Status)

	// A second confirmation lands in the completed stage; no re-dispatch.
	_, err := svc.Process(ctx, "+15550001", "yes")
	require.NoError(t, err)
	assert.Len(t, dispatcher.snapshots, 1)
}

func TestServiceCRMFailureDoesNotBreakReply(t *testing.T) {
	dispatcher := &captureDispatcher{err: errors.New("webhook down")}
	svc, repo := newTestService(t, dispatcher)
	ctx := context.Background()

	script := []string{"yes", "Jane Doe", "45", "TX", "no", "$80", "morning", "2"}
	for _, msg := range script {
		_, err := svc.Process(ctx, "+15550001", msg)
		require.NoError(t, err)
	}

	reply, err := svc.Process(ctx, "+15550001", "yes")
	require.NoError(t, err)
	assert.Contains(t, reply, "confirmed")

	stored, err := repo.GetByPhone(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, leads.StatusBooked, stored.Status)
}

func TestServiceSerializesPerPhone(t *testing.T) {
	svc, repo := newTestService(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Process(ctx, "+15550001", "hello")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.GetByPhone(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, leads.StageGreeting, stored.Stage)
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("key")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)

	// All entries released once the holders are gone.
	km.mu.Lock()
	assert.Empty(t, km.locks)
	km.mu.Unlock()
}
