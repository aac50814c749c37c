package types

import (
	"time"

	"github.com/google/uuid"
)

// Leccion is an AI-generated lesson. Rows are immutable after creation.
type Leccion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Tema        string    `gorm:"not null;column:tema" json:"tema"`
	Contenido   string    `gorm:"type:text;not null;column:contenido" json:"contenido"`
	ProveedorIA string    `gorm:"not null;default:'openai';column:proveedor_ia" json:"proveedor_ia"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Leccion) TableName() string {
	return "leccion"
}
