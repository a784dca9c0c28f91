package models

import (
	"time"

	"gorm.io/datatypes"
)

// Case is one listing episode: a period during which the property was
// offered for sale. Volatile entity, replaced wholesale on every refresh;
// only CaseID is stable across refreshes.
type Case struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"index;not null" json:"property_id"`

	CaseID string  `gorm:"uniqueIndex;not null" json:"case_id"`
	Status *string `json:"status"` // "open", "sold", "withdrawn"

	// Pricing
	CurrentPrice          *float64 `json:"current_price"`
	OriginalPrice         *float64 `json:"original_price"`
	PriceChangePercentage *float64 `json:"price_change_percentage"`
	PerAreaPrice          *float64 `json:"per_area_price"`
	MonthlyExpense        *float64 `json:"monthly_expense"`

	// Dates
	CreatedDate  *time.Time `json:"created_date"`
	ModifiedDate *time.Time `json:"modified_date"`
	SoldDate     *time.Time `json:"sold_date"`

	// Market tracking
	DaysOnMarketCurrent *int `json:"days_on_market_current"`
	DaysOnMarketTotal   *int `json:"days_on_market_total"`

	// Property characteristics as published on the listing
	LotArea      *float64 `json:"lot_area"`
	BasementArea *float64 `json:"basement_area"`
	YearBuilt    *int     `json:"year_built"`

	// Marketing text
	DescriptionTitle *string `json:"description_title"`
	DescriptionBody  *string `gorm:"type:text" json:"description_body"`

	CaseURL        *string `json:"case_url"`
	ProviderCaseID *string `json:"provider_case_id"`

	// Feature flags
	HasBalcony  *bool `json:"has_balcony"`
	HasTerrace  *bool `json:"has_terrace"`
	HasElevator *bool `json:"has_elevator"`

	Highlighted *bool   `json:"highlighted"`
	Distinction *string `json:"distinction"`

	RealtorsInfo datatypes.JSON `json:"realtors_info"`

	ImportedAt time.Time `gorm:"autoCreateTime" json:"imported_at"`

	PriceChanges []PriceChange `gorm:"constraint:OnDelete:CASCADE" json:"price_changes,omitempty"`
	Images       []CaseImage   `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

func (Case) TableName() string {
	return "cases"
}

// PriceChange is one historical price-change event inside a case. Owned
// exclusively by its Case and cascade-deleted with it.
type PriceChange struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CaseID int64 `gorm:"index;not null" json:"case_id"`

	ChangeDate        *time.Time `json:"change_date"`
	OldPrice          *float64   `json:"old_price"`
	NewPrice          *float64   `json:"new_price"`
	PriceChangeAmount *float64   `json:"price_change_amount"`

	ImportedAt time.Time `gorm:"autoCreateTime" json:"imported_at"`
}

func (PriceChange) TableName() string {
	return "price_changes"
}

// CaseImage is one (photo, rendered size) pair. The importer keeps two
// sizes per photo: 600x400 for cards and 1440x960 for the detail view.
type CaseImage struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CaseID int64 `gorm:"index;not null" json:"case_id"`

	ImageURL string `gorm:"not null" json:"image_url"`
	Width    int    `gorm:"not null" json:"width"`
	Height   int    `gorm:"not null" json:"height"`

	IsDefault bool    `gorm:"default:false" json:"is_default"`
	SortOrder int     `gorm:"default:0" json:"sort_order"`
	AltText   *string `json:"alt_text"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CaseImage) TableName() string {
	return "case_images"
}
