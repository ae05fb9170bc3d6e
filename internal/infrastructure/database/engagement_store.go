package database

import (
	"context"
	"errors"

	"dutchie-backend/internal/application/deals"
	"dutchie-backend/internal/domain"

	"gorm.io/gorm"
)

// RatingStore implements deals.RatingStore on the scores table.
type RatingStore struct {
	DB *gorm.DB
}

// Histograms runs a single IN query for all ids. Buys without a scores row are left out;
// callers read the zero Histogram for them.
func (s *RatingStore) Histograms(ctx context.Context, ids []deals.ItemID) (map[deals.ItemID]deals.Histogram, error) {
	out := make(map[deals.ItemID]deals.Histogram, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var scores []domain.Score
	if err := s.DB.WithContext(ctx).Where("buy_id IN ?", ids).Find(&scores).Error; err != nil {
		return nil, err
	}
	for _, sc := range scores {
		out[sc.BuyID] = deals.Histogram{sc.One, sc.Two, sc.Three, sc.Four, sc.Five}
	}
	return out, nil
}

// LikeStore implements deals.LikeStore on the likes table.
type LikeStore struct {
	DB *gorm.DB
}

func (s *LikeStore) CountFor(ctx context.Context, id deals.ItemID) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.Like{}).Where("buy_id = ?", id).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (s *LikeStore) HasLiked(ctx context.Context, viewer deals.UserID, id deals.ItemID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&domain.Like{}).
		Where("user_id = ? AND buy_id = ?", viewer, id).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Toggle removes the viewer's like if present, otherwise adds it.
func (s *LikeStore) Toggle(ctx context.Context, viewer deals.UserID, id deals.ItemID) (bool, error) {
	liked := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Like
		err := tx.Where("user_id = ? AND buy_id = ?", viewer, id).First(&existing).Error
		if err == nil {
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		liked = true
		return tx.Create(&domain.Like{UserID: viewer, BuyID: id}).Error
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}
