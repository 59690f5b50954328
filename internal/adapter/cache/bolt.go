package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

var bucketEmbeddings = []byte("embeddings")

// BoltCache persists document embeddings in a BoltDB file so they survive
// restarts. Entries are tagged with the model that produced them; a lookup
// under a different model is a miss.
type BoltCache struct {
	db     *bbolt.DB
	model  string
	logger *slog.Logger
}

type storedEmbedding struct {
	Vector    []float32 `json:"v"`
	Model     string    `json:"model"`
	CreatedAt int64     `json:"created_at"`
}

// NewBoltCache opens (or creates) the cache file at path. Write failures in
// Put are logged to logger, or to slog.Default when it is nil.
func NewBoltCache(path, model string, logger *slog.Logger) (*BoltCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketEmbeddings); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketEmbeddings, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltCache{db: db, model: model, logger: logger}, nil
}

func (c *BoltCache) Get(key string) ([]float32, bool) {
	var vector []float32
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEmbeddings).Get([]byte(key))
		if data == nil {
			return nil
		}
		var stored storedEmbedding
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil // Skip corrupted entries
		}
		if stored.Model != c.model {
			return nil
		}
		vector = stored.Vector
		return nil
	})
	if err != nil || vector == nil {
		return nil, false
	}
	return vector, true
}

// Put stores the vector. Write failures are logged, not returned.
func (c *BoltCache) Put(key string, vector []float32) {
	if err := c.Store(key, vector); err != nil {
		c.logger.Warn("failed to persist embedding", "key", key, "error", err)
	}
}

// Store is Put with the write error surfaced.
func (c *BoltCache) Store(key string, vector []float32) error {
	data, err := json.Marshal(storedEmbedding{
		Vector:    vector,
		Model:     c.model,
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEmbeddings).Put([]byte(key), data)
	})
}

func (c *BoltCache) Len() int {
	n := 0
	_ = c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketEmbeddings).Stats().KeyN
		return nil
	})
	return n
}

// Keys lists all cached keys in byte order.
func (c *BoltCache) Keys() ([]string, error) {
	var keys []string
	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEmbeddings).ForEach(func(k, v []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Clear removes every cached embedding.
func (c *BoltCache) Clear() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketEmbeddings); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketEmbeddings)
		return err
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
