package models

import "time"

// User roles. Bauherren post projects, Handwerker bid on them.
const (
	RoleBauherr    = "bauherr"
	RoleHandwerker = "handwerker"
)

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Email       string `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password    string `gorm:"type:varchar(255);not null" json:"-"`
	Role        string `gorm:"type:varchar(32);not null" json:"role"`
	CompanyName string `gorm:"type:varchar(255)" json:"company_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
