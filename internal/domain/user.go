package domain

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered member. Only the fields login and session need are mapped.
type User struct {
	UserID       uint64         `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Nickname     string         `gorm:"column:nickname;not null" json:"nickname"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updated_at" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// AllModels lists every table AutoMigrate manages.
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &Product{}, &Buy{}, &Category{}, &BuyCategory{}, &Like{}, &Review{}, &Score{},
	}
}
