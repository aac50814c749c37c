package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polyia/polyia-backend/internal/requestdata"
	"github.com/polyia/polyia-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type ChatResponse struct {
	Respuesta  string    `json:"respuesta"`
	Correccion *string   `json:"correccion"`
	MensajeID  uuid.UUID `json:"mensaje_id"`
}

type MensajeResponse struct {
	ID           uuid.UUID `json:"id"`
	TextoUsuario string    `json:"texto_usuario"`
	RespuestaIA  string    `json:"respuesta_ia"`
	CorreccionIA *string   `json:"correccion_ia"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ch *ChatHandler) Local(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "token_invalido", fmt.Errorf("No se pudo validar el token."))
		return
	}
	var req struct {
		Mensaje        string `json:"mensaje" binding:"required,min=1,max=2000"`
		IdiomaObjetivo string `json:"idioma_objetivo"`
		NivelIdioma    string `json:"nivel_idioma"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "validacion", err)
		return
	}
	result, err := ch.chatService.Chat(c.Request.Context(), rd.UserID, req.Mensaje, req.NivelIdioma, req.IdiomaObjetivo)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, ChatResponse{
		Respuesta:  result.Respuesta,
		Correccion: result.Correccion,
		MensajeID:  result.MensajeID,
	})
}

func (ch *ChatHandler) Historial(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "token_invalido", fmt.Errorf("No se pudo validar el token."))
		return
	}
	mensajes, err := ch.chatService.History(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	out := make([]MensajeResponse, 0, len(mensajes))
	for _, m := range mensajes {
		out = append(out, MensajeResponse{
			ID:           m.ID,
			TextoUsuario: m.TextoUsuario,
			RespuestaIA:  m.RespuestaIA,
			CorreccionIA: m.CorreccionIA,
			CreatedAt:    m.CreatedAt,
		})
	}
	RespondOK(c, out)
}
