package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

const (
	LevelA1 = "A1 Beginner"
	LevelA2 = "A2 Elementary"
	LevelB1 = "B1 Intermediate"
	LevelB2 = "B2 Upper-Intermediate"
	LevelC1 = "C1 Advanced"
	LevelC2 = "C2 Proficient"
)

var Levels = []string{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

func IsLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

type Teacher struct {
	ID           string         `gorm:"primaryKey;size:64" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Surname      string         `gorm:"size:255;not null" json:"surname"`
	Languages    pq.StringArray `gorm:"type:text[]" json:"languages"`
	Levels       pq.StringArray `gorm:"type:text[]" json:"levels"`
	Rating       float64        `gorm:"default:0" json:"rating"`
	Reviews      []Review       `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"reviews"`
	PricePerHour float64        `gorm:"type:numeric(10,2);not null" json:"price_per_hour"`
	LessonsDone  int            `gorm:"default:0" json:"lessons_done"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	LessonInfo   string         `gorm:"type:text" json:"lesson_info"`
	Conditions   pq.StringArray `gorm:"type:text[]" json:"conditions"`
	Experience   string         `gorm:"type:text" json:"experience"`
	CreatedAt    time.Time      `json:"-"`
	UpdatedAt    time.Time      `json:"-"`
}

func (t Teacher) FullName() string {
	return t.Name + " " + t.Surname
}

// UnmarshalJSON accepts numeric and string ids alike.
func (t *Teacher) UnmarshalJSON(data []byte) error {
	type alias Teacher
	aux := struct {
		ID interface{} `json:"id"`
		*alias
	}{alias: (*alias)(t)}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&aux); err != nil {
		return err
	}
	t.ID = NormalizeID(aux.ID)
	return nil
}
