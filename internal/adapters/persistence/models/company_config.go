package models

import "time"

// CompanyConfig represents company_configs table. At most one row is active.
type CompanyConfig struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CompanyName string    `gorm:"size:100;not null" json:"companyName"`
	Email       string    `gorm:"size:100;not null" json:"email"`
	Phone       string    `gorm:"size:30;not null" json:"phone"`
	Address     string    `gorm:"size:200;not null" json:"address"`
	IsActive    bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (CompanyConfig) TableName() string {
	return "company_configs"
}

// CompanyPublicInfo is the subset exposed without authentication
type CompanyPublicInfo struct {
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

func (c *CompanyConfig) PublicInfo() *CompanyPublicInfo {
	return &CompanyPublicInfo{
		CompanyName: c.CompanyName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
	}
}
