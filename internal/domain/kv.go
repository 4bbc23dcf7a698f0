package domain

import "time"

// KVEntry 是 MySQL 键值后端的一行，替代浏览器 localStorage 中的一个条目。
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:191"`
	Value     string    `gorm:"column:entry_value;type:longtext;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (KVEntry) TableName() string { return "kv_entries" }
