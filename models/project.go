package models

import "time"

type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BauherrID uint      `gorm:"not null;index" json:"bauherr_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Zip       string    `gorm:"type:varchar(10)" json:"zip"`
	Status    string    `gorm:"type:varchar(32);default:'active'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
