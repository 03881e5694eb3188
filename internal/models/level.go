package models

// Level is an explorer rank reached by unique visit count.
type Level struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"not null;size:100" json:"name"`
	VisitsRequired int    `gorm:"uniqueIndex;not null" json:"visits_required"`
	ImageURL       string `gorm:"size:255" json:"image_url,omitempty"`
}

// TableName specifies the table name for Level model.
func (Level) TableName() string {
	return "levels"
}

// LevelFor returns the highest level whose requirement is met by uniqueVisits,
// and the following level if any. levels must be sorted by VisitsRequired ascending.
func LevelFor(levels []Level, uniqueVisits int) (current, next *Level) {
	for i := range levels {
		if levels[i].VisitsRequired <= uniqueVisits {
			current = &levels[i]
			continue
		}
		next = &levels[i]
		break
	}
	return current, next
}
