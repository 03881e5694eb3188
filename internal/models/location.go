package models

// Location is a point of interest users can check in to.
type Location struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	Name               string        `gorm:"not null;size:150;index" json:"name"`
	Description        string        `gorm:"type:text" json:"description"`
	Latitude           float64       `gorm:"not null" json:"latitude"`
	Longitude          float64       `gorm:"not null" json:"longitude"`
	MunicipalityID     uint          `gorm:"not null;index" json:"municipality_id"`
	Municipality       *Municipality `gorm:"foreignKey:MunicipalityID" json:"municipality,omitempty"`
	Difficulty         string        `gorm:"size:50" json:"difficulty,omitempty"`
	IsNatural          bool          `gorm:"default:false" json:"is_natural"`
	BestSeason         string        `gorm:"size:50" json:"best_season,omitempty"`
	BestTimeOfDay      string        `gorm:"size:50" json:"best_time_of_day,omitempty"`
	MainImageURL       string        `gorm:"size:255" json:"main_image_url,omitempty"`
	UnlockedContentURL string        `gorm:"size:255" json:"-"`
}

// TableName specifies the table name for Location model.
func (Location) TableName() string {
	return "locations"
}

// MunicipalityName returns the name of the preloaded municipality, or "" when not loaded.
func (l *Location) MunicipalityName() string {
	if l.Municipality == nil {
		return ""
	}
	return l.Municipality.Name
}
