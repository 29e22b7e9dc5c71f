package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dispatchline/delivery-console/pkg/enums"
	"github.com/dispatchline/delivery-console/pkg/types"
)

// Partner is a delivery partner in the directory.
type Partner struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name        string               `gorm:"column:name;not null"`
	Email       string               `gorm:"column:email;not null;uniqueIndex:partners_email_key"`
	Phone       string               `gorm:"column:phone;not null"`
	Status      enums.PartnerStatus  `gorm:"column:status;type:text;not null;default:'active'"`
	CurrentLoad int                  `gorm:"column:current_load;not null;default:0"`
	Areas       []string             `gorm:"column:areas;type:jsonb;serializer:json"`
	Shift       types.Shift          `gorm:"column:shift;type:jsonb;serializer:json"`
	Metrics     types.PartnerMetrics `gorm:"column:metrics;type:jsonb;serializer:json"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (Partner) TableName() string { return "partners" }
