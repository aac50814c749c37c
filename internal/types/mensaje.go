package types

import (
	"time"

	"github.com/google/uuid"
)

// Mensaje is one chat exchange with the local tutor model. RespuestaIA is
// empty only on unexpected internal failure paths; CorreccionIA nil means no
// correction was needed or none was available.
type Mensaje struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TextoUsuario string    `gorm:"type:text;not null;column:texto_usuario" json:"texto_usuario"`
	RespuestaIA  string    `gorm:"type:text;column:respuesta_ia" json:"respuesta_ia"`
	CorreccionIA *string   `gorm:"type:text;column:correccion_ia" json:"correccion_ia"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (Mensaje) TableName() string {
	return "mensaje"
}
