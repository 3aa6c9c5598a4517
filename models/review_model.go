package models

// Review is a student's rating of a teacher, shown on the teacher card.
type Review struct {
	ID             uint    `gorm:"primaryKey" json:"-"`
	TeacherID      string  `gorm:"size:64;index;not null" json:"-"`
	ReviewerName   string  `gorm:"size:255" json:"reviewer_name"`
	ReviewerRating float64 `json:"reviewer_rating"`
	Comment        string  `gorm:"type:text" json:"comment"`
}

func (Review) TableName() string {
	return "teacher_reviews"
}
