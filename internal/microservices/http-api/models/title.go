package models

type Title struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:200;not null"`
	Year        int    `json:"year" gorm:"not null;index"`
	Description string `json:"description" gorm:"type:text;not null;default:''"`
	CategoryID  *int64 `json:"-" gorm:"index"`

	// association
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genre,omitempty" gorm:"many2many:genre_title"`
}

func (Title) TableName() string {
	return "titles"
}

// explicit join model, the table has its own id and a unique (title_id, genre_id)
type TitleGenre struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64 `json:"title_id" gorm:"uniqueIndex:uq_genre_title;not null"`
	GenreID int64 `json:"genre_id" gorm:"uniqueIndex:uq_genre_title;index;not null"`
}

func (TitleGenre) TableName() string {
	return "genre_title"
}
