// Package mapper translates one nested source document into flat entity
// records. Pure transformation: no network, no database, and no failure on
// absent optional fields.
package mapper

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"boligdata/internal/boliga"
	"boligdata/internal/models"
)

// Target rendered sizes kept per photo: card thumbnail and detail view.
var targetImageSizes = [][2]int{
	{600, 400},
	{1440, 960},
}

// Bundle is the full set of records mapped from one document. The caller
// owns persistence; the Property must be written before its children.
type Bundle struct {
	Property            models.Property
	MainBuilding        *models.MainBuilding
	AdditionalBuildings []models.AdditionalBuilding
	Registrations       []models.Registration
	Municipality        *models.Municipality
	Province            *models.Province
	Road                *models.Road
	Zip                 *models.Zip
	City                *models.City
	Place               *models.Place
	DaysOnMarket        *models.DaysOnMarket
	Cases               []models.Case
}

// Map converts a detail document into a Bundle keyed by the document's
// address ID.
func Map(doc *boliga.AddressDocument) *Bundle {
	propertyID := doc.AddressID

	b := &Bundle{
		Property:            mapProperty(doc),
		MainBuilding:        mapMainBuilding(propertyID, doc.Buildings),
		AdditionalBuildings: mapAdditionalBuildings(propertyID, doc.Buildings),
		Registrations:       mapRegistrations(propertyID, doc.Registrations),
		Cases:               MapCases(propertyID, doc.Cases),
	}

	if doc.Municipality != nil {
		b.Municipality = mapMunicipality(propertyID, doc.Municipality)
	}
	if doc.Province != nil {
		b.Province = &models.Province{
			PropertyID:   propertyID,
			Name:         doc.Province.Name,
			ProvinceCode: doc.Province.ProvinceCode,
			RegionCode:   doc.Province.RegionCode,
			Slug:         doc.Province.Slug,
		}
	}
	if doc.Road != nil {
		b.Road = &models.Road{
			PropertyID:       propertyID,
			Name:             doc.Road.Name,
			RoadCode:         doc.Road.RoadCode,
			RoadID:           doc.Road.RoadID,
			Slug:             doc.Road.Slug,
			MunicipalityCode: doc.Road.MunicipalityCode,
		}
	}
	if doc.Zip != nil {
		b.Zip = &models.Zip{
			PropertyID: propertyID,
			ZipCode:    doc.Zip.ZipCode,
			Name:       doc.Zip.Name,
			Slug:       doc.Zip.Slug,
			Group:      doc.Zip.Group,
		}
	}
	if doc.City != nil {
		b.City = &models.City{
			PropertyID: propertyID,
			Name:       doc.City.Name,
			Slug:       doc.City.Slug,
		}
	}
	if doc.Place != nil {
		b.Place = mapPlace(propertyID, doc.Place)
	}
	if doc.DaysOnMarket != nil {
		b.DaysOnMarket = &models.DaysOnMarket{
			PropertyID: propertyID,
			Realtors:   rawJSON(doc.DaysOnMarket.Realtors),
		}
	}

	return b
}

func mapProperty(doc *boliga.AddressDocument) models.Property {
	p := models.Property{
		ID:          doc.AddressID,
		AddressType: doc.AddressType,

		RoadName:    doc.RoadName,
		HouseNumber: doc.HouseNumber,
		Door:        doc.Door,
		Floor:       doc.Floor,
		CityName:    doc.CityName,
		ZipCode:     doc.ZipCode,
		PlaceName:   doc.PlaceName,

		LivingArea:      doc.LivingArea,
		WeightedArea:    doc.WeightedArea,
		LatestValuation: doc.LatestValuation,
		PropertyNumber:  doc.PropertyNumber,

		IsOnMarket:            doc.IsOnMarket,
		IsPublic:              doc.IsPublic,
		AllowNewValuationInfo: doc.AllowNewValuationInfo,

		EnergyLabel: doc.EnergyLabel,

		EntryAddressID: doc.EntryAddressID,
		Gstkvhx:        doc.Gstkvhx,

		Slug:        doc.Slug,
		SlugAddress: doc.SlugAddress,
	}

	if doc.Coordinates != nil {
		p.Latitude = doc.Coordinates.Lat
		p.Longitude = doc.Coordinates.Lon
		p.CoordinateType = doc.Coordinates.Type
	}
	if doc.Links != nil && doc.Links.Self != nil {
		p.APIHref = doc.Links.Self.Href
	}
	if len(doc.BFENumbers) > 0 {
		if data, err := json.Marshal(doc.BFENumbers); err == nil {
			p.BFENumbers = datatypes.JSON(data)
		}
	}
	if d := doc.LatestSoldCaseDescription; d != nil {
		p.LatestSoldCaseTitle = d.Title
		p.LatestSoldCaseBody = d.Body
		p.LatestSoldCaseDate = ParseTime(d.Date)
	}
	if doc.BoligsidenInfo != nil {
		p.LatestSoldArea = doc.BoligsidenInfo.LatestSoldArea
	}

	p.Address = buildAddress(&p)
	return p
}

// buildAddress assembles the display address from its components.
func buildAddress(p *models.Property) *string {
	var parts []string
	if p.RoadName != nil {
		parts = append(parts, *p.RoadName)
	}
	if p.HouseNumber != nil {
		parts = append(parts, *p.HouseNumber)
	}
	if p.CityName != nil && p.ZipCode != nil {
		parts = append(parts, fmt.Sprintf("%d %s", *p.ZipCode, *p.CityName))
	}
	if len(parts) == 0 {
		return nil
	}
	addr := strings.Join(parts, " ")
	return &addr
}

// mapMainBuilding maps element 0 of the buildings array. The first element
// is the main building regardless of any name field.
func mapMainBuilding(propertyID string, buildings []boliga.BuildingDocument) *models.MainBuilding {
	if len(buildings) == 0 {
		return nil
	}
	bldg := buildings[0]
	return &models.MainBuilding{
		PropertyID: propertyID,

		BuildingName:   bldg.BuildingName,
		BuildingNumber: bldg.BuildingNumber,

		HousingArea:  bldg.HousingArea,
		TotalArea:    bldg.TotalArea,
		BasementArea: bldg.BasementArea,
		BusinessArea: bldg.BusinessArea,
		OtherArea:    bldg.OtherArea,

		NumberOfRooms:     bldg.NumberOfRooms,
		NumberOfFloors:    bldg.NumberOfFloors,
		NumberOfBathrooms: bldg.NumberOfBathrooms,
		NumberOfKitchens:  bldg.NumberOfKitchens,
		NumberOfToilets:   bldg.NumberOfToilets,

		BathroomCondition: bldg.BathroomCondition,
		KitchenCondition:  bldg.KitchenCondition,
		ToiletCondition:   bldg.ToiletCondition,

		ExternalWallMaterial:              bldg.ExternalWallMaterial,
		SupplementaryExternalWallMaterial: bldg.SupplementaryExternalWallMaterial,
		RoofingMaterial:                   bldg.RoofingMaterial,
		SupplementaryRoofingMaterial:      bldg.SupplementaryRoofingMaterial,

		HeatingInstallation:  bldg.HeatingInstallation,
		SupplementaryHeating: bldg.SupplementaryHeating,

		YearBuilt:     bldg.YearBuilt,
		YearRenovated: bldg.YearRenovated,

		AsbestosContainingMaterial: bldg.AsbestosContainingMaterial,
	}
}

// mapAdditionalBuildings maps elements 1..N: garages, carports, sheds.
func mapAdditionalBuildings(propertyID string, buildings []boliga.BuildingDocument) []models.AdditionalBuilding {
	if len(buildings) <= 1 {
		return nil
	}
	out := make([]models.AdditionalBuilding, 0, len(buildings)-1)
	for _, bldg := range buildings[1:] {
		out = append(out, models.AdditionalBuilding{
			PropertyID: propertyID,

			BuildingName:   bldg.BuildingName,
			BuildingNumber: bldg.BuildingNumber,

			TotalArea: bldg.TotalArea,
			YearBuilt: bldg.YearBuilt,

			ExternalWallMaterial:              bldg.ExternalWallMaterial,
			SupplementaryExternalWallMaterial: bldg.SupplementaryExternalWallMaterial,
			RoofingMaterial:                   bldg.RoofingMaterial,
			SupplementaryRoofingMaterial:      bldg.SupplementaryRoofingMaterial,

			HeatingInstallation: bldg.HeatingInstallation,
		})
	}
	return out
}

// mapRegistrations maps sale transactions. Entries without a registration
// ID are dropped; the natural key drives the store's upsert.
func mapRegistrations(propertyID string, regs []boliga.RegistrationDocument) []models.Registration {
	if len(regs) == 0 {
		return nil
	}
	out := make([]models.Registration, 0, len(regs))
	for _, reg := range regs {
		if reg.RegistrationID == nil || *reg.RegistrationID == "" {
			continue
		}
		out = append(out, models.Registration{
			PropertyID:     propertyID,
			RegistrationID: *reg.RegistrationID,
			Amount:         reg.Amount,
			Date:           ParseTime(reg.Date),
			Type:           reg.Type,
			Area:           reg.Area,
			LivingArea:     reg.LivingArea,
			PerAreaPrice:   reg.PerAreaPrice,

			MunicipalityCode: reg.MunicipalityCode,
			PropertyNumber:   reg.PropertyNumber,
		})
	}
	return out
}

func mapMunicipality(propertyID string, m *boliga.MunicipalityDocument) *models.Municipality {
	return &models.Municipality{
		PropertyID:       propertyID,
		MunicipalityCode: m.MunicipalityCode,
		Name:             m.Name,
		Slug:             m.Slug,

		ChurchTaxPercentage:          m.ChurchTaxPercentage,
		CouncilTaxPercentage:         m.CouncilTaxPercentage,
		LandValueTaxLevelPerThousand: m.LandValueTaxLevelPerThousand,

		NumberOfSchools: m.NumberOfSchools,
		Population:      m.Population,
	}
}

func mapPlace(propertyID string, place *boliga.PlaceDocument) *models.Place {
	p := &models.Place{
		PropertyID: propertyID,
		PlaceID:    place.ID,
		Name:       place.Name,
		Slug:       place.Slug,
	}
	if len(place.BBox) >= 4 {
		p.BBoxMinLon = &place.BBox[0]
		p.BBoxMinLat = &place.BBox[1]
		p.BBoxMaxLon = &place.BBox[2]
		p.BBoxMaxLat = &place.BBox[3]
	}
	if place.Coordinates != nil {
		p.Latitude = place.Coordinates.Lat
		p.Longitude = place.Coordinates.Lon
		p.CoordinateType = place.Coordinates.Type
	}
	return p
}

// MapCases maps listing episodes with their price-change and image
// children. Exported separately because the case refresh path maps cases
// for a property it already holds.
func MapCases(propertyID string, cases []boliga.CaseDocument) []models.Case {
	if len(cases) == 0 {
		return nil
	}
	out := make([]models.Case, 0, len(cases))
	for _, cd := range cases {
		if cd.CaseID == nil || *cd.CaseID == "" {
			continue
		}
		c := models.Case{
			PropertyID: propertyID,
			CaseID:     *cd.CaseID,
			Status:     cd.Status,

			CurrentPrice:          cd.PriceCash,
			OriginalPrice:         cd.OriginalPrice,
			PriceChangePercentage: cd.PriceChangePercentage,
			PerAreaPrice:          cd.PerAreaPrice,
			MonthlyExpense:        cd.MonthlyExpense,

			CreatedDate:  ParseTime(cd.Created),
			ModifiedDate: ParseTime(cd.Modified),
			SoldDate:     ParseTime(cd.Sold),

			LotArea:      cd.LotArea,
			BasementArea: cd.BasementArea,
			YearBuilt:    cd.YearBuilt,

			DescriptionTitle: cd.DescriptionTitle,
			DescriptionBody:  cd.DescriptionBody,

			CaseURL:        cd.CaseURL,
			ProviderCaseID: cd.ProviderCaseID,

			HasBalcony:  cd.HasBalcony,
			HasTerrace:  cd.HasTerrace,
			HasElevator: cd.HasElevator,

			Highlighted: cd.Highlighted,
			Distinction: cd.Distinction,
		}
		if tom := cd.TimeOnMarket; tom != nil {
			if tom.Current != nil {
				c.DaysOnMarketCurrent = tom.Current.Days
			}
			if tom.Total != nil {
				c.DaysOnMarketTotal = tom.Total.Days
				c.RealtorsInfo = rawJSON(tom.Total.Realtors)
			}
		}
		c.PriceChanges = mapPriceChanges(cd.PriceChanges)
		c.Images = mapCaseImages(cd.Images)
		out = append(out, c)
	}
	return out
}

func mapPriceChanges(changes []boliga.PriceChangeDocument) []models.PriceChange {
	if len(changes) == 0 {
		return nil
	}
	out := make([]models.PriceChange, 0, len(changes))
	for _, pc := range changes {
		out = append(out, models.PriceChange{
			ChangeDate:        ParseTime(pc.Created),
			OldPrice:          pc.OldPrice,
			NewPrice:          pc.NewPrice,
			PriceChangeAmount: pc.PriceChange,
		})
	}
	return out
}

// mapCaseImages keeps one row per targeted rendered size per photo. The
// first photo in the array is the listing's default image; sort order is
// the photo's position in the source array.
func mapCaseImages(images []boliga.ImageDocument) []models.CaseImage {
	var out []models.CaseImage
	for idx, img := range images {
		var altText *string
		urlsBySize := make(map[[2]int]string)

		for _, source := range img.ImageSources {
			if altText == nil && source.Alt != nil {
				altText = source.Alt
			}
			if source.Size == nil || source.Size.Width == nil || source.Size.Height == nil || source.URL == nil {
				continue
			}
			urlsBySize[[2]int{*source.Size.Width, *source.Size.Height}] = *source.URL
		}

		for _, size := range targetImageSizes {
			imageURL, ok := urlsBySize[size]
			if !ok {
				continue
			}
			out = append(out, models.CaseImage{
				ImageURL:  imageURL,
				Width:     size[0],
				Height:    size[1],
				IsDefault: idx == 0,
				SortOrder: idx,
				AltText:   altText,
			})
		}
	}
	return out
}

// ParseTime parses the source's two date shapes: plain YYYY-MM-DD and
// RFC3339 timestamps. Malformed or absent values resolve to nil rather
// than failing the mapping.
func ParseTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, *s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func rawJSON(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	return datatypes.JSON(raw)
}
