package auth

import "time"

// Operator is a back-office user allowed to issue payment links.
type Operator struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username       string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_operators_username" json:"username"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_operators_email" json:"email"`
	HashedPassword string    `gorm:"type:varchar(255);not null" json:"-"`
	IsAdmin        bool      `gorm:"not null;default:false" json:"is_admin"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (Operator) TableName() string { return "operators" }
