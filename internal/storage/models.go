package storage

// Entry is a single key-value row persisted by DBStore.
type Entry struct {
	Key   string `gorm:"primaryKey;size:512"`
	Value string
}

// TableName keeps the table name stable regardless of struct renames.
func (Entry) TableName() string { return "kv_entries" }
