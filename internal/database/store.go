package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"boligdata/internal/mapper"
	"boligdata/internal/models"
)

// Bound on IN-clause size when checking candidate IDs against the store.
const existsChunkSize = 1000

// Store applies mapped bundles against durable storage. Two merge
// policies: upsert-by-natural-key for stable entities, delete-then-insert
// for cases and their children. Not safe for concurrent writers; the
// orchestrator keeps all writes on one goroutine.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewStore(db *gorm.DB, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{db: db, logger: logger}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// ExistingIDs returns which of the candidate IDs already have a Property
// row, using chunked set-membership queries instead of per-ID lookups.
func (s *Store) ExistingIDs(ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	for start := 0; start < len(ids); start += existsChunkSize {
		end := start + existsChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		var found []string
		err := s.db.Model(&models.Property{}).
			Where("id IN ?", ids[start:end]).
			Pluck("id", &found).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check existing properties: %w", err)
		}
		for _, id := range found {
			existing[id] = struct{}{}
		}
	}
	return existing, nil
}

// WriteBatch commits a batch of bundles in one transaction. A failure
// rolls back this batch only; earlier batches stay committed.
func (s *Store) WriteBatch(bundles []*mapper.Bundle) error {
	if len(bundles) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, b := range bundles {
			if err := upsertBundle(tx, b); err != nil {
				return fmt.Errorf("failed to write property %s: %w", b.Property.ID, err)
			}
		}
		return nil
	})
}

// upsertBundle applies one property's records. The Property row is merged
// first so child rows always reference an existing parent.
func upsertBundle(tx *gorm.DB, b *mapper.Bundle) error {
	if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&b.Property).Error; err != nil {
		return fmt.Errorf("property: %w", err)
	}

	if b.MainBuilding != nil {
		if err := upsertByPropertyID(tx, b.MainBuilding); err != nil {
			return fmt.Errorf("main building: %w", err)
		}
	}

	// Auxiliary structures have no stable sub-identity; replace the set.
	if err := tx.Where("property_id = ?", b.Property.ID).
		Delete(&models.AdditionalBuilding{}).Error; err != nil {
		return fmt.Errorf("additional buildings: %w", err)
	}
	if len(b.AdditionalBuildings) > 0 {
		if err := tx.Create(&b.AdditionalBuildings).Error; err != nil {
			return fmt.Errorf("additional buildings: %w", err)
		}
	}

	// Registrations are immutable facts, keyed by the source's
	// registration ID so re-imports cannot accumulate duplicates.
	for i := range b.Registrations {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "registration_id"}},
			UpdateAll: true,
		}).Create(&b.Registrations[i]).Error; err != nil {
			return fmt.Errorf("registration: %w", err)
		}
	}

	if b.Municipality != nil {
		if err := upsertByPropertyID(tx, b.Municipality); err != nil {
			return fmt.Errorf("municipality: %w", err)
		}
	}
	if b.Province != nil {
		if err := upsertByPropertyID(tx, b.Province); err != nil {
			return fmt.Errorf("province: %w", err)
		}
	}
	if b.Road != nil {
		if err := upsertByPropertyID(tx, b.Road); err != nil {
			return fmt.Errorf("road: %w", err)
		}
	}
	if b.Zip != nil {
		if err := upsertByPropertyID(tx, b.Zip); err != nil {
			return fmt.Errorf("zip: %w", err)
		}
	}
	if b.City != nil {
		if err := upsertByPropertyID(tx, b.City); err != nil {
			return fmt.Errorf("city: %w", err)
		}
	}
	if b.Place != nil {
		if err := upsertByPropertyID(tx, b.Place); err != nil {
			return fmt.Errorf("place: %w", err)
		}
	}
	if b.DaysOnMarket != nil {
		if err := upsertByPropertyID(tx, b.DaysOnMarket); err != nil {
			return fmt.Errorf("days on market: %w", err)
		}
	}

	return replaceCases(tx, b.Property.ID, b.Cases)
}

// upsertByPropertyID merges a one-per-property dimension row.
func upsertByPropertyID(tx *gorm.DB, record interface{}) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}},
		UpdateAll: true,
	}).Create(record).Error
}

// ReplaceCases swaps a property's entire case set in one transaction.
// One commit per property on the refresh path.
func (s *Store) ReplaceCases(propertyID string, cases []models.Case) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return replaceCases(tx, propertyID, cases)
	})
}

// replaceCases deletes the existing cases for a property together with
// their price-change and image children, then inserts the new set.
// Wholesale replacement: the case array has no sub-identity the importer
// trusts for field-level patching. Grandchildren are removed explicitly
// rather than relying on driver cascade settings.
func replaceCases(tx *gorm.DB, propertyID string, cases []models.Case) error {
	caseIDs := tx.Model(&models.Case{}).Select("id").Where("property_id = ?", propertyID)

	if err := tx.Where("case_id IN (?)", caseIDs).Delete(&models.PriceChange{}).Error; err != nil {
		return fmt.Errorf("failed to delete price changes: %w", err)
	}
	if err := tx.Where("case_id IN (?)", caseIDs).Delete(&models.CaseImage{}).Error; err != nil {
		return fmt.Errorf("failed to delete case images: %w", err)
	}
	if err := tx.Where("property_id = ?", propertyID).Delete(&models.Case{}).Error; err != nil {
		return fmt.Errorf("failed to delete cases: %w", err)
	}

	for i := range cases {
		// Create also inserts the nested PriceChanges and Images with
		// the new surrogate case ID.
		if err := tx.Create(&cases[i]).Error; err != nil {
			return fmt.Errorf("failed to insert case %s: %w", cases[i].CaseID, err)
		}
	}
	return nil
}

// PropertyIDsWithCases lists properties that currently hold any case rows;
// input for the bulk case refresh.
func (s *Store) PropertyIDsWithCases() ([]string, error) {
	var ids []string
	err := s.db.Model(&models.Case{}).Distinct().Pluck("property_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties with cases: %w", err)
	}
	return ids, nil
}

// PropertyIDsWithOpenCases lists properties with an active listing; input
// for the lighter periodic refresh.
func (s *Store) PropertyIDsWithOpenCases() ([]string, error) {
	var ids []string
	err := s.db.Model(&models.Case{}).
		Where("status = ?", "open").
		Distinct().
		Pluck("property_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties with open cases: %w", err)
	}
	return ids, nil
}
