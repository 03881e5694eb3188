package models

// Continent is the root of the geographic hierarchy.
type Continent struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null;size:100" json:"name"`
}

// TableName specifies the table name for Continent model.
func (Continent) TableName() string {
	return "continents"
}

// Country belongs to a continent.
type Country struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	ContinentID uint      `gorm:"not null;index" json:"continent_id"`
	Continent   Continent `gorm:"foreignKey:ContinentID" json:"-"`
}

// TableName specifies the table name for Country model.
func (Country) TableName() string {
	return "countries"
}

// Region is a first-level administrative division (autonomous community).
type Region struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"uniqueIndex;not null;size:100" json:"name"`
	CountryID uint    `gorm:"not null;index" json:"country_id"`
	Country   Country `gorm:"foreignKey:CountryID" json:"-"`
}

// TableName specifies the table name for Region model.
func (Region) TableName() string {
	return "regions"
}

// Province belongs to a region.
type Province struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"uniqueIndex;not null;size:100" json:"name"`
	RegionID uint   `gorm:"not null;index" json:"region_id"`
	Region   Region `gorm:"foreignKey:RegionID" json:"-"`
}

// TableName specifies the table name for Province model.
func (Province) TableName() string {
	return "provinces"
}

// Island belongs to a province. Mainland municipalities have no island.
type Island struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Name       string   `gorm:"uniqueIndex;not null;size:100" json:"name"`
	ProvinceID uint     `gorm:"not null;index" json:"province_id"`
	Province   Province `gorm:"foreignKey:ProvinceID" json:"-"`
}

// TableName specifies the table name for Island model.
func (Island) TableName() string {
	return "islands"
}

// Municipality is the unit used for municipality-based achievements.
type Municipality struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Name       string   `gorm:"not null;size:100;index" json:"name"`
	ProvinceID uint     `gorm:"not null;index" json:"province_id"`
	Province   Province `gorm:"foreignKey:ProvinceID" json:"-"`
	IslandID   *uint    `gorm:"index" json:"island_id,omitempty"`
	Island     *Island  `gorm:"foreignKey:IslandID" json:"-"`
}

// TableName specifies the table name for Municipality model.
func (Municipality) TableName() string {
	return "municipalities"
}
