package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is a row of the kv_entries table
type Entry struct {
	Key       string    `gorm:"column:kv_key;primaryKey;size:191"`
	Value     []byte    `gorm:"column:kv_value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "kv_entries"
}

// SQLStore keeps values in a relational table through gorm. Update locks the
// row (SELECT ... FOR UPDATE where supported) inside a transaction and
// additionally serializes writers of this process per key.
type SQLStore struct {
	db     *gorm.DB
	writes keyLocks
}

// NewSQLStore creates a store on db. The kv_entries table must exist,
// see AutoMigrate.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// AutoMigrate creates the kv_entries table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Entry{})
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.get(s.db.WithContext(ctx), key)
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	unlock := s.writes.lock(key)
	defer unlock()
	return s.put(s.db.WithContext(ctx), key, value)
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	unlock := s.writes.lock(key)
	defer unlock()
	if err := s.db.WithContext(ctx).Where("kv_key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("delete kv entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	unlock := s.writes.lock(key)
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.get(tx.Clauses(clause.Locking{Strength: "UPDATE"}), key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		return s.put(tx, key, next)
	})
}

// Close is a no-op; the gorm connection is owned by the caller
func (s *SQLStore) Close() error { return nil }

func (s *SQLStore) get(db *gorm.DB, key string) ([]byte, error) {
	var e Entry
	err := db.Where("kv_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get kv entry %s: %w", key, err)
	}
	return e.Value, nil
}

func (s *SQLStore) put(db *gorm.DB, key string, value []byte) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"kv_value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("put kv entry %s: %w", key, err)
	}
	return nil
}

var _ Store = (*SQLStore)(nil)
