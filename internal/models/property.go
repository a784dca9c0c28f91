package models

import (
	"time"

	"gorm.io/datatypes"
)

// Property is the aggregate root: one row per physical address, keyed by
// the source's opaque addressID.
type Property struct {
	ID          string  `gorm:"primaryKey" json:"id"`
	Address     *string `json:"address"`
	AddressType *string `json:"address_type"`

	// Location
	RoadName    *string `json:"road_name"`
	HouseNumber *string `json:"house_number"`
	Door        *string `json:"door"`
	Floor       *string `json:"floor"`
	CityName    *string `json:"city_name"`
	ZipCode     *int    `json:"zip_code"`
	PlaceName   *string `json:"place_name"`

	// Coordinates
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	CoordinateType *string  `json:"coordinate_type"`

	// Areas and valuation
	LivingArea      *float64 `json:"living_area"`
	WeightedArea    *float64 `json:"weighted_area"`
	LatestValuation *float64 `json:"latest_valuation"`
	PropertyNumber  *int     `json:"property_number"`

	// Status flags
	IsOnMarket            *bool `json:"is_on_market"`
	IsPublic              *bool `json:"is_public"`
	AllowNewValuationInfo *bool `json:"allow_new_valuation_info"`

	EnergyLabel *string `json:"energy_label"`

	// IDs and codes
	EntryAddressID *string `json:"entry_address_id"`
	Gstkvhx        *string `json:"gstkvhx"`

	// URLs and slugs
	Slug        *string `json:"slug"`
	SlugAddress *string `json:"slug_address"`
	APIHref     *string `json:"api_href"`

	BFENumbers datatypes.JSON `json:"bfe_numbers"`

	// Latest sold case description
	LatestSoldCaseTitle *string    `json:"latest_sold_case_title"`
	LatestSoldCaseBody  *string    `gorm:"type:text" json:"latest_sold_case_body"`
	LatestSoldCaseDate  *time.Time `json:"latest_sold_case_date"`

	LatestSoldArea *float64 `json:"latest_sold_area"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Associations; cascade delete flows from here down to case children
	MainBuilding        *MainBuilding        `gorm:"constraint:OnDelete:CASCADE" json:"main_building,omitempty"`
	AdditionalBuildings []AdditionalBuilding `gorm:"constraint:OnDelete:CASCADE" json:"additional_buildings,omitempty"`
	Registrations       []Registration       `gorm:"constraint:OnDelete:CASCADE" json:"registrations,omitempty"`
	Municipality        *Municipality        `gorm:"constraint:OnDelete:CASCADE" json:"municipality,omitempty"`
	Province            *Province            `gorm:"constraint:OnDelete:CASCADE" json:"province,omitempty"`
	Road                *Road                `gorm:"constraint:OnDelete:CASCADE" json:"road,omitempty"`
	Zip                 *Zip                 `gorm:"constraint:OnDelete:CASCADE" json:"zip,omitempty"`
	City                *City                `gorm:"constraint:OnDelete:CASCADE" json:"city,omitempty"`
	Place               *Place               `gorm:"constraint:OnDelete:CASCADE" json:"place,omitempty"`
	DaysOnMarket        *DaysOnMarket        `gorm:"constraint:OnDelete:CASCADE" json:"days_on_market,omitempty"`
	Cases               []Case               `gorm:"constraint:OnDelete:CASCADE" json:"cases,omitempty"`
}

func (Property) TableName() string {
	return "properties"
}

// MainBuilding holds the first element of the source's buildings array,
// which carries full room/condition/material detail.
type MainBuilding struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"uniqueIndex;not null" json:"property_id"`

	BuildingName   *string `json:"building_name"`
	BuildingNumber *string `json:"building_number"`

	// Areas
	HousingArea  *float64 `json:"housing_area"`
	TotalArea    *float64 `json:"total_area"`
	BasementArea *float64 `json:"basement_area"`
	BusinessArea *float64 `json:"business_area"`
	OtherArea    *float64 `json:"other_area"`

	// Rooms and facilities
	NumberOfRooms     *int `json:"number_of_rooms"`
	NumberOfFloors    *int `json:"number_of_floors"`
	NumberOfBathrooms *int `json:"number_of_bathrooms"`
	NumberOfKitchens  *int `json:"number_of_kitchens"`
	NumberOfToilets   *int `json:"number_of_toilets"`

	// Conditions
	BathroomCondition *string `json:"bathroom_condition"`
	KitchenCondition  *string `json:"kitchen_condition"`
	ToiletCondition   *string `json:"toilet_condition"`

	// Materials
	ExternalWallMaterial              *string `json:"external_wall_material"`
	SupplementaryExternalWallMaterial *string `json:"supplementary_external_wall_material"`
	RoofingMaterial                   *string `json:"roofing_material"`
	SupplementaryRoofingMaterial      *string `json:"supplementary_roofing_material"`

	// Heating
	HeatingInstallation  *string `json:"heating_installation"`
	SupplementaryHeating *string `json:"supplementary_heating"`

	YearBuilt     *int `json:"year_built"`
	YearRenovated *int `json:"year_renovated"`

	AsbestosContainingMaterial *string `json:"asbestos_containing_material"`
}

func (MainBuilding) TableName() string {
	return "main_buildings"
}

// AdditionalBuilding covers garages, carports, sheds and similar auxiliary
// structures; the source only publishes a reduced field set for these.
type AdditionalBuilding struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"index;not null" json:"property_id"`

	BuildingName   *string `json:"building_name"`
	BuildingNumber *string `json:"building_number"`

	TotalArea *float64 `json:"total_area"`
	YearBuilt *int     `json:"year_built"`

	ExternalWallMaterial              *string `json:"external_wall_material"`
	SupplementaryExternalWallMaterial *string `json:"supplementary_external_wall_material"`
	RoofingMaterial                   *string `json:"roofing_material"`
	SupplementaryRoofingMaterial      *string `json:"supplementary_roofing_material"`

	HeatingInstallation *string `json:"heating_installation"`
}

func (AdditionalBuilding) TableName() string {
	return "additional_buildings"
}

// Registration is one historical sale transaction. Immutable fact data,
// upserted by its source-provided registration ID.
type Registration struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"index;not null" json:"property_id"`

	RegistrationID string     `gorm:"uniqueIndex;not null" json:"registration_id"`
	Amount         *float64   `json:"amount"`
	Date           *time.Time `json:"date"`
	Type           *string    `json:"type"`

	Area       *float64 `json:"area"`
	LivingArea *float64 `json:"living_area"`

	PerAreaPrice *float64 `json:"per_area_price"`

	MunicipalityCode *int `json:"municipality_code"`
	PropertyNumber   *int `json:"property_number"`
}

func (Registration) TableName() string {
	return "registrations"
}

type Municipality struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"uniqueIndex;not null" json:"property_id"`

	MunicipalityCode *int    `json:"municipality_code"`
	Name             *string `json:"name"`
	Slug             *string `json:"slug"`

	ChurchTaxPercentage          *float64 `json:"church_tax_percentage"`
	CouncilTaxPercentage         *float64 `json:"council_tax_percentage"`
	LandValueTaxLevelPerThousand *float64 `json:"land_value_tax_level_per_thousand"`

	NumberOfSchools *int `json:"number_of_schools"`
	Population      *int `json:"population"`
}

func (Municipality) TableName() string {
	return "municipalities"
}

type Province struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"uniqueIndex;not null" json:"property_id"`

	Name         *string `json:"name"`
	ProvinceCode *string `json:"province_code"`
	RegionCode   *int    `json:"region_code"`
	Slug         *string `json:"slug"`
}

func (Province) TableName() string {
	return "provinces"
}

type Road struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"uniqueIndex;not null" json:"property_id"`

	Name             *string `json:"name"`
	RoadCode         *int    `json:"road_code"`
	RoadID           *string `json:"road_id"`
	Slug             *string `json:"slug"`
	MunicipalityCode *int    `json:"municipality_code"`
}

func (Road) TableName() string {
	return "roads"
}

type Zip struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"uniqueIndex;not null" json:"property_id"`

	ZipCode *int    `json:"zip_code"`
	Name    *string `json:"name"`
	Slug    *string `json:"slug"`
	Group   *int    `json:"group"`
}

func (Zip) TableName() string {
	return "zip_codes"
}

type City struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"uniqueIndex;not null" json:"property_id"`

	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

func (City) TableName() string {
	return "cities"
}

type Place struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"uniqueIndex;not null" json:"property_id"`

	PlaceID *int    `json:"place_id"`
	Name    *string `json:"name"`
	Slug    *string `json:"slug"`

	// Bounding box
	BBoxMinLon *float64 `json:"bbox_min_lon"`
	BBoxMinLat *float64 `json:"bbox_min_lat"`
	BBoxMaxLon *float64 `json:"bbox_max_lon"`
	BBoxMaxLat *float64 `json:"bbox_max_lat"`

	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	CoordinateType *string  `json:"coordinate_type"`
}

func (Place) TableName() string {
	return "places"
}

type DaysOnMarket struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string `gorm:"uniqueIndex;not null" json:"property_id"`

	Realtors datatypes.JSON `json:"realtors"`
}

func (DaysOnMarket) TableName() string {
	return "days_on_market"
}
