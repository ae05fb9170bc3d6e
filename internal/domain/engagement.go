package domain

import (
	"time"

	"gorm.io/gorm"
)

// Like is one user's like on one Buy.
type Like struct {
	LikeID    uint64    `gorm:"column:like_id;primaryKey;autoIncrement" json:"like_id"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:idx_like_user_buy" json:"user_id"`
	BuyID     uint64    `gorm:"column:buy_id;not null;uniqueIndex:idx_like_user_buy;index" json:"buy_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Like) TableName() string {
	return "likes"
}

// Review is a purchaser's review. Soft-deleted reviews do not count.
type Review struct {
	ReviewID  uint64         `gorm:"column:review_id;primaryKey;autoIncrement" json:"review_id"`
	BuyID     uint64         `gorm:"column:buy_id;not null;index" json:"buy_id"`
	UserID    uint64         `gorm:"column:user_id;not null" json:"user_id"`
	Rating    int            `gorm:"column:rating;not null" json:"rating"`
	Contents  string         `gorm:"column:contents" json:"contents"`
	ReviewImg *string        `gorm:"column:review_img" json:"review_img"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}

// Score keeps the per-Buy rating histogram, maintained by the review writer.
type Score struct {
	BuyID uint64 `gorm:"column:buy_id;primaryKey;autoIncrement:false" json:"buy_id"`
	One   int    `gorm:"column:one;not null;default:0" json:"one"`
	Two   int    `gorm:"column:two;not null;default:0" json:"two"`
	Three int    `gorm:"column:three;not null;default:0" json:"three"`
	Four  int    `gorm:"column:four;not null;default:0" json:"four"`
	Five  int    `gorm:"column:five;not null;default:0" json:"five"`
}

func (Score) TableName() string {
	return "scores"
}
