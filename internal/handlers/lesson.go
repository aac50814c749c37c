package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polyia/polyia-backend/internal/requestdata"
	"github.com/polyia/polyia-backend/internal/services"
	"github.com/polyia/polyia-backend/internal/types"
)

type LessonHandler struct {
	lessonService services.LessonService
}

func NewLessonHandler(lessonService services.LessonService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService}
}

type LeccionResponse struct {
	ID          uuid.UUID `json:"id"`
	Tema        string    `json:"tema"`
	Contenido   string    `json:"contenido"`
	ProveedorIA string    `json:"proveedor_ia"`
}

func leccionResponse(l *types.Leccion) LeccionResponse {
	return LeccionResponse{
		ID:          l.ID,
		Tema:        l.Tema,
		Contenido:   l.Contenido,
		ProveedorIA: l.ProveedorIA,
	}
}

func (lh *LessonHandler) Generar(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "token_invalido", fmt.Errorf("No se pudo validar el token."))
		return
	}
	var req struct {
		Tema           string `json:"tema" binding:"required,min=2,max=200"`
		NivelIdioma    string `json:"nivel_idioma"`
		IdiomaObjetivo string `json:"idioma_objetivo"`
		Proveedor      string `json:"proveedor" binding:"omitempty,oneof=openai anthropic google"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "validacion", err)
		return
	}
	leccion, err := lh.lessonService.Generate(c.Request.Context(), rd.UserID, req.Tema, req.NivelIdioma, req.IdiomaObjetivo, req.Proveedor)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, leccionResponse(leccion))
}

func (lh *LessonHandler) Lista(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "token_invalido", fmt.Errorf("No se pudo validar el token."))
		return
	}
	lecciones, err := lh.lessonService.List(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	out := make([]LeccionResponse, 0, len(lecciones))
	for _, l := range lecciones {
		out = append(out, leccionResponse(l))
	}
	RespondOK(c, out)
}
