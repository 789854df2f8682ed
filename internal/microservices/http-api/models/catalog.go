package models

type Category struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:200;not null"`
	Slug string `json:"slug" gorm:"size:20;uniqueIndex:uq_categories_slug;not null"`
}

func (Category) TableName() string {
	return "categories"
}

type Genre struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:50;not null"`
	Slug string `json:"slug" gorm:"size:20;uniqueIndex:uq_genres_slug;not null"`
}

func (Genre) TableName() string {
	return "genres"
}
