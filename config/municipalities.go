package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Municipality is one entry in the municipality configuration file.
type Municipality struct {
	Name                   string   `json:"name"`
	DistanceToCopenhagenKM *float64 `json:"distance_to_copenhagen_km"`
}

type municipalityFile struct {
	Municipalities []Municipality `json:"municipalities"`
}

// MaxDistanceKM bounds the import area around Copenhagen.
const MaxDistanceKM = 60.0

// DefaultMunicipalities is the built-in import area, used when no
// configuration file is given.
var DefaultMunicipalities = []string{
	"København",
	"Frederiksberg",
	"Gentofte",
	"Gladsaxe",
	"Lyngby-Taarbæk",
	"Ballerup",
	"Herlev",
	"Rødovre",
	"Hvidovre",
	"Brøndby",
	"Glostrup",
	"Tårnby",
	"Dragør",
	"Albertslund",
	"Høje-Taastrup",
	"Ishøj",
	"Vallensbæk",
	"Greve",
	"Roskilde",
	"Rudersdal",
	"Furesø",
	"Egedal",
	"Hørsholm",
	"Allerød",
	"Fredensborg",
	"Hillerød",
	"Køge",
	"Solrød",
}

// LoadMunicipalities reads a municipality list from a JSON file and keeps
// only entries verifiably within MaxDistanceKM. Entries without distance
// data are skipped rather than trusted.
func LoadMunicipalities(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read municipality config: %w", err)
	}

	var file municipalityFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse municipality config: %w", err)
	}
	if len(file.Municipalities) == 0 {
		return nil, fmt.Errorf("municipality config %s contains no municipalities", path)
	}

	var names []string
	for _, m := range file.Municipalities {
		if m.Name == "" || m.DistanceToCopenhagenKM == nil {
			continue
		}
		if *m.DistanceToCopenhagenKM <= MaxDistanceKM {
			names = append(names, m.Name)
		}
	}
	return names, nil
}
