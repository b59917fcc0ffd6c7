package repositories

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/research-advisor/internal/models"
)

// PaperRepository reads the crawled paper catalogue for embedding.
type PaperRepository interface {
	FindPendingEmbedding(afterID uint64, limit int) ([]models.PaperRecord, error)
	MarkEmbedded(ids []uint64, at time.Time) error
	Stats() (*models.EmbeddingStats, error)
}

type paperRepository struct {
	db *gorm.DB
}

func NewPaperRepository(db *gorm.DB) PaperRepository {
	return &paperRepository{db: db}
}

// FindPendingEmbedding pages through unembedded papers in ID order. Passing
// the last seen ID keeps rows that keep failing from being fetched again in
// the same pass.
func (r *paperRepository) FindPendingEmbedding(afterID uint64, limit int) ([]models.PaperRecord, error) {
	var papers []models.PaperRecord
	query := r.db.
		Where("embedded_at IS NULL").
		Where("id > ?", afterID).
		Order("id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&papers).Error; err != nil {
		return nil, fmt.Errorf("failed to find pending papers: %w", err)
	}

	return papers, nil
}

func (r *paperRepository) MarkEmbedded(ids []uint64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	result := r.db.Model(&models.PaperRecord{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"embedded_at": at,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark papers embedded: %w", result.Error)
	}

	return nil
}

func (r *paperRepository) Stats() (*models.EmbeddingStats, error) {
	var stats models.EmbeddingStats

	if err := r.db.Model(&models.PaperRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count papers: %w", err)
	}

	if err := r.db.Model(&models.PaperRecord{}).
		Where("embedded_at IS NOT NULL").
		Count(&stats.Embedded).Error; err != nil {
		return nil, fmt.Errorf("failed to count embedded papers: %w", err)
	}

	stats.Pending = stats.Total - stats.Embedded
	return &stats, nil
}
