// Package seed loads reference data (geography, locations, levels) from YAML
// and upserts it into the database.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aimd54/geoquest/internal/geo"
	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/internal/repository"
	"github.com/aimd54/geoquest/pkg/logger"
)

// Dataset is the root of a seed file.
type Dataset struct {
	Continents []Continent `yaml:"continents"`
	Locations  []Location  `yaml:"locations"`
	Levels     []Level     `yaml:"levels"`
}

// Continent groups countries.
type Continent struct {
	Name      string    `yaml:"name"`
	Countries []Country `yaml:"countries"`
}

// Country groups regions.
type Country struct {
	Name    string   `yaml:"name"`
	Regions []Region `yaml:"regions"`
}

// Region groups provinces.
type Region struct {
	Name      string     `yaml:"name"`
	Provinces []Province `yaml:"provinces"`
}

// Province lists its islands and any municipalities not on an island.
type Province struct {
	Name           string   `yaml:"name"`
	Islands        []Island `yaml:"islands"`
	Municipalities []string `yaml:"municipalities"`
}

// Island lists its municipalities.
type Island struct {
	Name           string   `yaml:"name"`
	Municipalities []string `yaml:"municipalities"`
}

// Location is a point of interest referencing its municipality by name.
type Location struct {
	Name               string  `yaml:"name"`
	Municipality       string  `yaml:"municipality"`
	Description        string  `yaml:"description"`
	Latitude           float64 `yaml:"latitude"`
	Longitude          float64 `yaml:"longitude"`
	Difficulty         string  `yaml:"difficulty"`
	IsNatural          bool    `yaml:"is_natural"`
	BestSeason         string  `yaml:"best_season"`
	BestTimeOfDay      string  `yaml:"best_time_of_day"`
	MainImageURL       string  `yaml:"main_image_url"`
	UnlockedContentURL string  `yaml:"unlocked_content_url"`
}

// Level is an explorer level.
type Level struct {
	Name           string `yaml:"name"`
	VisitsRequired int    `yaml:"visits_required"`
	ImageURL       string `yaml:"image_url"`
}

// Summary counts the rows touched by Apply.
type Summary struct {
	Municipalities int
	Locations      int
	Levels         int
}

// Load reads and validates a dataset file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a dataset.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// municipalityNames counts each municipality name declared in the hierarchy.
func (ds *Dataset) municipalityNames() map[string]int {
	names := make(map[string]int)
	for _, c := range ds.Continents {
		for _, co := range c.Countries {
			for _, r := range co.Regions {
				for _, p := range r.Provinces {
					for _, m := range p.Municipalities {
						names[m]++
					}
					for _, i := range p.Islands {
						for _, m := range i.Municipalities {
							names[m]++
						}
					}
				}
			}
		}
	}
	return names
}

// Validate checks names, coordinates and municipality references.
func (ds *Dataset) Validate() error {
	municipalities := ds.municipalityNames()
	for name, n := range municipalities {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("municipality with empty name")
		}
		if n > 1 {
			return fmt.Errorf("municipality %q is declared %d times", name, n)
		}
	}

	seen := make(map[string]bool, len(ds.Locations))
	for _, l := range ds.Locations {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("location with empty name")
		}
		if seen[l.Name] {
			return fmt.Errorf("location %q is declared twice", l.Name)
		}
		seen[l.Name] = true

		if municipalities[l.Municipality] == 0 {
			return fmt.Errorf("location %q references unknown municipality %q", l.Name, l.Municipality)
		}
		if err := geo.Validate(l.Latitude, l.Longitude); err != nil {
			return fmt.Errorf("location %q: %w", l.Name, err)
		}
	}

	levels := make(map[int]bool, len(ds.Levels))
	for _, lv := range ds.Levels {
		if lv.VisitsRequired < 0 {
			return fmt.Errorf("level %q: visits_required must not be negative", lv.Name)
		}
		if levels[lv.VisitsRequired] {
			return fmt.Errorf("two levels require %d visits", lv.VisitsRequired)
		}
		levels[lv.VisitsRequired] = true
	}
	return nil
}

// Apply upserts the dataset in a single transaction. Rows are matched by name
// (locations by name within their municipality, levels by required visits), so
// applying the same dataset twice changes nothing.
func Apply(ctx context.Context, db *repository.DB, ds *Dataset, log *logger.Logger) (Summary, error) {
	var summary Summary

	err := db.Transaction(ctx, func(tx *repository.DB) error {
		municipalityIDs := make(map[string]uint)

		for _, c := range ds.Continents {
			continent := models.Continent{Name: c.Name}
			if err := tx.Where(continent).FirstOrCreate(&continent).Error; err != nil {
				return fmt.Errorf("failed to upsert continent %s: %w", c.Name, err)
			}

			for _, co := range c.Countries {
				country := models.Country{Name: co.Name}
				if err := tx.Where(country).Attrs(models.Country{ContinentID: continent.ID}).FirstOrCreate(&country).Error; err != nil {
					return fmt.Errorf("failed to upsert country %s: %w", co.Name, err)
				}

				for _, r := range co.Regions {
					region := models.Region{Name: r.Name}
					if err := tx.Where(region).Attrs(models.Region{CountryID: country.ID}).FirstOrCreate(&region).Error; err != nil {
						return fmt.Errorf("failed to upsert region %s: %w", r.Name, err)
					}

					for _, p := range r.Provinces {
						province := models.Province{Name: p.Name}
						if err := tx.Where(province).Attrs(models.Province{RegionID: region.ID}).FirstOrCreate(&province).Error; err != nil {
							return fmt.Errorf("failed to upsert province %s: %w", p.Name, err)
						}

						for _, name := range p.Municipalities {
							id, err := upsertMunicipality(tx, name, province.ID, nil)
							if err != nil {
								return err
							}
							municipalityIDs[name] = id
						}

						for _, i := range p.Islands {
							island := models.Island{Name: i.Name}
							if err := tx.Where(island).Attrs(models.Island{ProvinceID: province.ID}).FirstOrCreate(&island).Error; err != nil {
								return fmt.Errorf("failed to upsert island %s: %w", i.Name, err)
							}

							for _, name := range i.Municipalities {
								islandID := island.ID
								id, err := upsertMunicipality(tx, name, province.ID, &islandID)
								if err != nil {
									return err
								}
								municipalityIDs[name] = id
							}
						}
					}
				}
			}
		}
		summary.Municipalities = len(municipalityIDs)

		for _, l := range ds.Locations {
			location := models.Location{Name: l.Name, MunicipalityID: municipalityIDs[l.Municipality]}
			err := tx.Where(location).
				Assign(map[string]any{
					"description":          l.Description,
					"latitude":             l.Latitude,
					"longitude":            l.Longitude,
					"difficulty":           l.Difficulty,
					"is_natural":           l.IsNatural,
					"best_season":          l.BestSeason,
					"best_time_of_day":     l.BestTimeOfDay,
					"main_image_url":       l.MainImageURL,
					"unlocked_content_url": l.UnlockedContentURL,
				}).
				FirstOrCreate(&location).Error
			if err != nil {
				return fmt.Errorf("failed to upsert location %s: %w", l.Name, err)
			}
			summary.Locations++
		}

		for _, lv := range ds.Levels {
			level := models.Level{}
			err := tx.Where("visits_required = ?", lv.VisitsRequired).
				Assign(map[string]any{"name": lv.Name, "visits_required": lv.VisitsRequired, "image_url": lv.ImageURL}).
				FirstOrCreate(&level).Error
			if err != nil {
				return fmt.Errorf("failed to upsert level %s: %w", lv.Name, err)
			}
			summary.Levels++
		}

		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	log.Info().
		Int("municipalities", summary.Municipalities).
		Int("locations", summary.Locations).
		Int("levels", summary.Levels).
		Msg("Reference data applied")

	return summary, nil
}

func upsertMunicipality(tx *repository.DB, name string, provinceID uint, islandID *uint) (uint, error) {
	municipality := models.Municipality{}
	err := tx.Where("name = ? AND province_id = ?", name, provinceID).
		Attrs(models.Municipality{Name: name, ProvinceID: provinceID, IslandID: islandID}).
		FirstOrCreate(&municipality).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upsert municipality %s: %w", name, err)
	}
	return municipality.ID, nil
}
