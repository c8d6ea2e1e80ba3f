package mistakes

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Store is the append-only mistake log backed by the mistakes table.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Init creates the mistakes table when absent. Safe to run on every
// start.
func (s *Store) Init(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return &StorageError{Op: "migrate", Err: err}
	}
	return nil
}

// Record appends one row with a store-generated timestamp and returns
// it with the assigned id.
func (s *Store) Record(ctx context.Context, userInput, mistake, correction string) (*Record, error) {
	rec := &Record{
		UserInput:  userInput,
		Mistake:    mistake,
		Correction: correction,
		Timestamp:  s.now().Format(TimeLayout),
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, &StorageError{Op: "insert", Err: err}
	}
	return rec, nil
}

// ListAll returns every record in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]Record, error) {
	var recs []Record
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return recs, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Record{}).Count(&n).Error; err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return n, nil
}
