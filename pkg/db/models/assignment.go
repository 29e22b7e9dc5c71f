package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dispatchline/delivery-console/pkg/enums"
)

// Assignment records which partner an order went to and how that went.
// There is at most one assignment per order.
type Assignment struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID              `gorm:"column:order_id;type:uuid;not null;uniqueIndex:assignments_order_id_key"`
	PartnerID  uuid.UUID              `gorm:"column:partner_id;type:uuid;not null"`
	Status     enums.AssignmentStatus `gorm:"column:status;type:text;not null;default:'success'"`
	Reason     *string                `gorm:"column:reason"`
	AssignedAt time.Time              `gorm:"column:assigned_at;not null"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time              `gorm:"column:updated_at;autoUpdateTime"`

	Order   *Order   `gorm:"foreignKey:OrderID;references:ID"`
	Partner *Partner `gorm:"foreignKey:PartnerID;references:ID"`
}

func (Assignment) TableName() string { return "assignments" }
