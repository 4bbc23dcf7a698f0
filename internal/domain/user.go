package domain

import "time"

// User 表示通过邮箱和密码登录的用户。
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(191);not null"`
	Email     string    `gorm:"type:varchar(191);uniqueIndex:idx_email;not null"`
	Password  string    `gorm:"type:text;not null"` // bcrypt 哈希
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
