package repository

import "context"

// KVStore 是一个持久化的字符串键值存储，语义上对应浏览器的 localStorage。
// 由 Redis、MySQL 或内存实现。
type KVStore interface {
	// Get 读取 key 对应的值。key 不存在时返回 found == false 且 err == nil。
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set 整体覆盖 key 的值 (后写者胜出)。
	Set(ctx context.Context, key, value string) error

	// Delete 删除 key，key 不存在时不报错。
	Delete(ctx context.Context, key string) error
}
