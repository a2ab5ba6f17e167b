package mysql

import (
	"context"

	"confrarias/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SealRepository struct {
	DB *gorm.DB
}

// Toggle flips the user's seal on a discovery inside one transaction. The
// discovery row is locked first, so concurrent toggles on the same discovery
// are serialized and selos always equals the number of seal rows.
// Unless seeHidden is set, a discovery that is not Aprovado is reported as
// missing to everyone but its author.
func (r *SealRepository) Toggle(ctx context.Context, discoveryID, userID string, seeHidden bool) (sealed bool, selos int64, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d model.Discovery
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "selos", "status", "author_id").
			Where("id = ?", discoveryID).
			Take(&d).Error; err != nil {
			return notFound(err)
		}
		if !seeHidden && d.Status != model.StatusAprovado && d.AuthorID != userID {
			return ErrNotFound
		}

		// try removing first: one statement decides which branch runs
		res := tx.Where("discovery_id = ? AND user_id = ?", discoveryID, userID).Delete(&model.DiscoverySeal{})
		if res.Error != nil {
			return res.Error
		}
		delta := int64(-1)
		sealed = false
		if res.RowsAffected == 0 {
			if err := tx.Create(&model.DiscoverySeal{DiscoveryID: discoveryID, UserID: userID}).Error; err != nil {
				return err
			}
			delta = 1
			sealed = true
		}

		if err := tx.Model(&model.Discovery{}).
			Where("id = ?", discoveryID).
			UpdateColumn("selos", gorm.Expr("selos + ?", delta)).Error; err != nil {
			return err
		}
		selos = d.Selos + delta

		return insertOutbox(tx, EventSealToggled, discoveryID, map[string]any{
			"discovery_id": discoveryID,
			"user_id":      userID,
			"sealed":       sealed,
			"selos":        selos,
		})
	})
	if err != nil {
		return false, 0, err
	}
	return sealed, selos, nil
}

// CountMismatches lists discoveries whose counter disagrees with their seal rows.
func (r *SealRepository) CountMismatches(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Raw(`
		SELECT d.id FROM discoveries d
		LEFT JOIN (SELECT discovery_id, COUNT(*) AS n FROM discovery_seals GROUP BY discovery_id) s
		  ON s.discovery_id = d.id
		WHERE d.selos <> COALESCE(s.n, 0)`).Scan(&ids).Error
	return ids, err
}
