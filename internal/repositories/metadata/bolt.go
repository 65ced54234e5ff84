package metadata

import (
	"bytes"
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

var bucketMetadata = []byte("metadata")

// BoltRepository keeps metadata in a single bbolt bucket.
type BoltRepository struct {
	db *bbolt.DB
}

// OpenBoltRepository opens (or creates) the bbolt file at path.
func OpenBoltRepository(path string) (*BoltRepository, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMetadata)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create metadata bucket: %w", err)
	}

	return &BoltRepository{db: db}, nil
}

func (r *BoltRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *BoltRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketMetadata).Get([]byte(key))
		if v != nil {
			// bbolt values are only valid inside the transaction
			value = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *BoltRepository) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMetadata).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *BoltRepository) Delete(ctx context.Context, key string) error {
	err := r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMetadata).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *BoltRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	p := []byte(prefix)

	err := r.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketMetadata).Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata keys: %w", err)
	}
	return keys, nil
}

func (r *BoltRepository) DeleteMany(ctx context.Context, keys []string) error {
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMetadata)
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %d metadata keys: %w", len(keys), err)
	}
	return nil
}

func (r *BoltRepository) List(ctx context.Context) (map[string][]byte, error) {
	result := make(map[string][]byte)
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMetadata).ForEach(func(k, v []byte) error {
			result[string(k)] = append([]byte{}, v...)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	return result, nil
}

func (r *BoltRepository) Clear(ctx context.Context) error {
	err := r.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketMetadata); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketMetadata)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}
