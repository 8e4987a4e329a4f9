package training

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/paulgroup/leadbot/pkg/logging"
)

const datasetKey = "leadbot:training:dataset"

// ErrNoSnapshot is returned when Redis holds no dataset snapshot yet.
var ErrNoSnapshot = errors.New("training: no dataset snapshot")

// SnapshotStore persists the active dataset in Redis so uploads survive
// restarts.
type SnapshotStore struct {
	client *redis.Client
	logger *logging.Logger
}

// NewSnapshotStore builds a SnapshotStore over an existing Redis client.
func NewSnapshotStore(client *redis.Client, logger *logging.Logger) *SnapshotStore {
	if client == nil {
		panic("training: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotStore{client: client, logger: logger}
}

// Save writes the dataset records as JSON under a fixed key, no TTL.
func (s *SnapshotStore) Save(ctx context.Context, ds *Dataset) error {
	data, err := json.Marshal(ds.Records())
	if err != nil {
		return fmt.Errorf("training: marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, datasetKey, data, 0).Err(); err != nil {
		return fmt.Errorf("training: save snapshot: %w", err)
	}
	s.logger.Info("dataset snapshot saved", "records", ds.Len())
	return nil
}

// Load reads the snapshot back, returning ErrNoSnapshot when absent.
func (s *SnapshotStore) Load(ctx context.Context) (*Dataset, error) {
	data, err := s.client.Get(ctx, datasetKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("training: load snapshot: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("training: parse snapshot: %w", err)
	}
	return NewDataset(records)
}
