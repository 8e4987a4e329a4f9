package leads

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository_FindOrCreate(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	lead, err := repo.FindOrCreate(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, "+15550001", lead.Phone)
	assert.Equal(t, StageGreeting, lead.Stage)
	assert.Equal(t, StatusActive, lead.Status)

	// Second call returns the same lead, not a fresh one.
	lead.Stage = StageAskName
	require.NoError(t, repo.Save(ctx, lead))

	again, err := repo.FindOrCreate(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, StageAskName, again.Stage)
}

func TestInMemoryRepository_FindOrCreate_MissingPhone(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.FindOrCreate(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingPhone)
}

func TestInMemoryRepository_GetByPhone_NotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.GetByPhone(context.Background(), "+19990000")
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestInMemoryRepository_SaveIsolation(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	lead, err := repo.FindOrCreate(ctx, "+15550001")
	require.NoError(t, err)
	lead.SlotOptions = []string{"1. Monday 09:00 AM", "2. Monday 10:00 AM"}
	require.NoError(t, repo.Save(ctx, lead))

	// Mutating the caller's copy must not leak into the store.
	lead.SlotOptions[0] = "tampered"

	stored, err := repo.GetByPhone(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, "1. Monday 09:00 AM", stored.SlotOptions[0])
}

func TestInMemoryRepository_List(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, phone := range []string{"+15550001", "+15550002", "+15550003"} {
		_, err := repo.FindOrCreate(ctx, phone)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInMemoryRepository_ConcurrentAccess(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lead, err := repo.FindOrCreate(ctx, "+15550001")
			if err != nil {
				t.Error(err)
				return
			}
			_ = repo.Save(ctx, lead)
		}()
	}
	wg.Wait()

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSlotOptionsRoundTrip(t *testing.T) {
	options := []string{"1. Monday 09:00 AM", "2. Monday 10:00 AM", "3. Monday 11:00 AM"}

	encoded := EncodeSlotOptions(options)
	decoded := DecodeSlotOptions(encoded)

	assert.Equal(t, options, decoded)
	assert.Nil(t, DecodeSlotOptions(""))
}

func TestLeadFirstName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Jane Doe", "Jane"},
		{"  Jane   Doe ", "Jane"},
		{"", ""},
	}
	for _, tt := range tests {
		lead := &Lead{Name: tt.name}
		if got := lead.FirstName(); got != tt.want {
			t.Errorf("FirstName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
