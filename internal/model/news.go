package model

import "time"

// News is an announcement shown on the home page.
type News struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"size:200;not null"`
	Content   string    `gorm:"type:text"`
	ImageURL  *string   `gorm:"column:image_url;size:512"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (News) TableName() string {
	return "news"
}
