package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dispatchline/delivery-console/pkg/enums"
	"github.com/dispatchline/delivery-console/pkg/types"
)

// Order is a customer order in the ledger. AssignedTo points at the partner
// currently responsible for it.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber  string            `gorm:"column:order_number;not null;uniqueIndex:orders_order_number_key"`
	Customer     types.Customer    `gorm:"column:customer;type:jsonb;serializer:json"`
	Area         string            `gorm:"column:area;not null"`
	Items        []types.OrderItem `gorm:"column:items;type:jsonb;serializer:json"`
	Status       enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ScheduledFor string            `gorm:"column:scheduled_for;not null"`
	AssignedTo   *uuid.UUID        `gorm:"column:assigned_to;type:uuid"`
	TotalAmount  decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Partner *Partner `gorm:"foreignKey:AssignedTo;references:ID"`
}

func (Order) TableName() string { return "orders" }
