package mistakes

import "fmt"

// TimeLayout is the text form of the timestamp column.
const TimeLayout = "2006-01-02 15:04:05"

// Record is one detected mistake. Rows are append-only: nothing in the
// application updates or deletes them.
type Record struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserInput  string `gorm:"column:user_input;type:text" json:"user_input"`
	Mistake    string `gorm:"column:mistake;type:text" json:"mistake"`
	Correction string `gorm:"column:correction;type:text" json:"correction"`
	Timestamp  string `gorm:"column:timestamp;type:text" json:"timestamp"`
}

func (Record) TableName() string { return "mistakes" }

// StorageError wraps a persistence failure. The session keeps running
// when one occurs; only the record is lost.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("mistake store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
