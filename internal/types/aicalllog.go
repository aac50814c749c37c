package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AICallLog records one outbound model call for auditing. Written
// best-effort: a failed log write never fails the request that caused it.
type AICallLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	CallType   string         `gorm:"column:call_type;not null" json:"call_type"` // leccion | chat
	Proveedor  string         `gorm:"column:proveedor;not null" json:"proveedor"`
	Model      string         `gorm:"column:model" json:"model"`
	Success    bool           `gorm:"column:success;not null" json:"success"`
	Error      string         `gorm:"column:error" json:"error"`
	DurationMS int64          `gorm:"column:duration_ms" json:"duration_ms"`
	Usage      datatypes.JSON `gorm:"type:jsonb;column:usage" json:"usage,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (AICallLog) TableName() string {
	return "ai_call_log"
}
