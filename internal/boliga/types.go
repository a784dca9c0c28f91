package boliga

import "encoding/json"

// The detail endpoint returns a deeply nested document. Every optional
// field is pointer-typed so that absent or null JSON values decode to nil
// instead of a zero value the mapper could mistake for data.

// AddressDocument is the full nested document for one property.
type AddressDocument struct {
	AddressID   string  `json:"addressID"`
	AddressType *string `json:"addressType"`

	RoadName    *string `json:"roadName"`
	HouseNumber *string `json:"houseNumber"`
	Door        *string `json:"door"`
	Floor       *string `json:"floor"`
	CityName    *string `json:"cityName"`
	ZipCode     *int    `json:"zipCode"`
	PlaceName   *string `json:"placeName"`

	Coordinates *Coordinates `json:"coordinates"`

	LivingArea      *float64 `json:"livingArea"`
	WeightedArea    *float64 `json:"weightedArea"`
	LatestValuation *float64 `json:"latestValuation"`
	PropertyNumber  *int     `json:"propertyNumber"`

	IsOnMarket            *bool `json:"isOnMarket"`
	IsPublic              *bool `json:"isPublic"`
	AllowNewValuationInfo *bool `json:"allowNewValuationInfo"`

	EnergyLabel *string `json:"energyLabel"`

	EntryAddressID *string `json:"entryAddressID"`
	Gstkvhx        *string `json:"gstkvhx"`

	Slug        *string `json:"slug"`
	SlugAddress *string `json:"slugAddress"`

	Links *Links `json:"_links"`

	BFENumbers []int64 `json:"bfeNumbers"`

	LatestSoldCaseDescription *SoldCaseDescription `json:"latestSoldCaseDescription"`
	BoligsidenInfo            *BoligsidenInfo      `json:"boligsidenInfo"`

	Buildings     []BuildingDocument     `json:"buildings"`
	Registrations []RegistrationDocument `json:"registrations"`

	Municipality *MunicipalityDocument `json:"municipality"`
	Province     *ProvinceDocument     `json:"province"`
	Road         *RoadDocument         `json:"road"`
	Zip          *ZipDocument          `json:"zip"`
	City         *CityDocument         `json:"city"`
	Place        *PlaceDocument        `json:"place"`
	DaysOnMarket *DaysOnMarketDocument `json:"daysOnMarket"`

	Cases []CaseDocument `json:"cases"`
}

type Coordinates struct {
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	Type *string  `json:"type"`
}

type Links struct {
	Self *Link `json:"self"`
}

type Link struct {
	Href *string `json:"href"`
}

type SoldCaseDescription struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
	Date  *string `json:"date"`
}

type BoligsidenInfo struct {
	LatestSoldArea *float64 `json:"latestSoldArea"`
}

// BuildingDocument covers both the main building (index 0, full detail)
// and auxiliary structures (index 1..N, reduced detail).
type BuildingDocument struct {
	BuildingName   *string `json:"buildingName"`
	BuildingNumber *string `json:"buildingNumber"`

	HousingArea  *float64 `json:"housingArea"`
	TotalArea    *float64 `json:"totalArea"`
	BasementArea *float64 `json:"basementArea"`
	BusinessArea *float64 `json:"businessArea"`
	OtherArea    *float64 `json:"otherArea"`

	NumberOfRooms     *int `json:"numberOfRooms"`
	NumberOfFloors    *int `json:"numberOfFloors"`
	NumberOfBathrooms *int `json:"numberOfBathrooms"`
	NumberOfKitchens  *int `json:"numberOfKitchens"`
	NumberOfToilets   *int `json:"numberOfToilets"`

	BathroomCondition *string `json:"bathroomCondition"`
	KitchenCondition  *string `json:"kitchenCondition"`
	ToiletCondition   *string `json:"toiletCondition"`

	ExternalWallMaterial              *string `json:"externalWallMaterial"`
	SupplementaryExternalWallMaterial *string `json:"supplementaryExternalWallMaterial"`
	RoofingMaterial                   *string `json:"roofingMaterial"`
	SupplementaryRoofingMaterial      *string `json:"supplementaryRoofingMaterial"`

	HeatingInstallation  *string `json:"heatingInstallation"`
	SupplementaryHeating *string `json:"supplementaryHeating"`

	YearBuilt     *int `json:"yearBuilt"`
	YearRenovated *int `json:"yearRenovated"`

	AsbestosContainingMaterial *string `json:"asbestosContainingMaterial"`
}

type RegistrationDocument struct {
	RegistrationID *string  `json:"registrationID"`
	Amount         *float64 `json:"amount"`
	Date           *string  `json:"date"`
	Type           *string  `json:"type"`

	Area       *float64 `json:"area"`
	LivingArea *float64 `json:"livingArea"`

	PerAreaPrice *float64 `json:"perAreaPrice"`

	MunicipalityCode *int `json:"municipalityCode"`
	PropertyNumber   *int `json:"propertyNumber"`
}

type MunicipalityDocument struct {
	MunicipalityCode *int    `json:"municipalityCode"`
	Name             *string `json:"name"`
	Slug             *string `json:"slug"`

	ChurchTaxPercentage          *float64 `json:"churchTaxPercentage"`
	CouncilTaxPercentage         *float64 `json:"councilTaxPercentage"`
	LandValueTaxLevelPerThousand *float64 `json:"landValueTaxLevelPerThousand"`

	NumberOfSchools *int `json:"numberOfSchools"`
	Population      *int `json:"population"`
}

type ProvinceDocument struct {
	Name         *string `json:"name"`
	ProvinceCode *string `json:"provinceCode"`
	RegionCode   *int    `json:"regionCode"`
	Slug         *string `json:"slug"`
}

type RoadDocument struct {
	Name             *string `json:"name"`
	RoadCode         *int    `json:"roadCode"`
	RoadID           *string `json:"roadID"`
	Slug             *string `json:"slug"`
	MunicipalityCode *int    `json:"municipalityCode"`
}

type ZipDocument struct {
	ZipCode *int    `json:"zipCode"`
	Name    *string `json:"name"`
	Slug    *string `json:"slug"`
	Group   *int    `json:"group"`
}

type CityDocument struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

type PlaceDocument struct {
	ID          *int         `json:"id"`
	Name        *string      `json:"name"`
	Slug        *string      `json:"slug"`
	BBox        []float64    `json:"bbox"`
	Coordinates *Coordinates `json:"coordinates"`
}

type DaysOnMarketDocument struct {
	Realtors json.RawMessage `json:"realtors"`
}

type CaseDocument struct {
	CaseID *string `json:"caseID"`
	Status *string `json:"status"`

	PriceCash             *float64 `json:"priceCash"`
	OriginalPrice         *float64 `json:"originalPrice"`
	PriceChangePercentage *float64 `json:"priceChangePercentage"`
	PerAreaPrice          *float64 `json:"perAreaPrice"`
	MonthlyExpense        *float64 `json:"monthlyExpense"`

	Created  *string `json:"created"`
	Modified *string `json:"modified"`
	Sold     *string `json:"sold"`

	TimeOnMarket *TimeOnMarket `json:"timeOnMarket"`

	LotArea      *float64 `json:"lotArea"`
	BasementArea *float64 `json:"basementArea"`
	YearBuilt    *int     `json:"yearBuilt"`

	DescriptionTitle *string `json:"descriptionTitle"`
	DescriptionBody  *string `json:"descriptionBody"`

	CaseURL        *string `json:"caseUrl"`
	ProviderCaseID *string `json:"providerCaseID"`

	HasBalcony  *bool `json:"hasBalcony"`
	HasTerrace  *bool `json:"hasTerrace"`
	HasElevator *bool `json:"hasElevator"`

	Highlighted *bool   `json:"highlighted"`
	Distinction *string `json:"distinction"`

	PriceChanges []PriceChangeDocument `json:"priceChanges"`
	Images       []ImageDocument       `json:"images"`
}

type TimeOnMarket struct {
	Current *TimeOnMarketSpan `json:"current"`
	Total   *TimeOnMarketSpan `json:"total"`
}

type TimeOnMarketSpan struct {
	Days     *int            `json:"days"`
	Realtors json.RawMessage `json:"realtors"`
}

type PriceChangeDocument struct {
	Created     *string  `json:"created"`
	OldPrice    *float64 `json:"oldPrice"`
	NewPrice    *float64 `json:"newPrice"`
	PriceChange *float64 `json:"priceChange"`
}

// ImageDocument is one photo; the source renders each photo in several
// pixel dimensions listed under imageSources.
type ImageDocument struct {
	ImageSources []ImageSource `json:"imageSources"`
}

type ImageSource struct {
	Size *ImageSize `json:"size"`
	URL  *string    `json:"url"`
	Alt  *string    `json:"alt"`
}

type ImageSize struct {
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

// SearchResponse is one page from the paginated search endpoint.
type SearchResponse struct {
	Addresses []SearchAddress `json:"addresses"`
	TotalHits int             `json:"totalHits"`
}

// SearchAddress is the summary record the search endpoint returns.
type SearchAddress struct {
	AddressID    string                `json:"addressID"`
	IsOnMarket   bool                  `json:"isOnMarket"`
	ZipCode      *int                  `json:"zipCode"`
	Municipality *MunicipalityDocument `json:"municipality"`
}
