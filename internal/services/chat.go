package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/polyia/polyia-backend/internal/logger"
	"github.com/polyia/polyia-backend/internal/repos"
	"github.com/polyia/polyia-backend/internal/types"
)

// ChatModel is the locally hosted tutor model.
type ChatModel interface {
	Model() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type ChatResult struct {
	Respuesta  string
	Correccion *string
	MensajeID  uuid.UUID
}

type ChatService interface {
	// Chat never fails on local-model connectivity problems: the reply
	// degrades to a fixed instructional message instead. The exchange is
	// persisted in every case.
	Chat(ctx context.Context, userID uuid.UUID, mensaje, nivelIdioma, idiomaObjetivo string) (*ChatResult, error)
	// History returns the user's chat exchanges newest first.
	History(ctx context.Context, userID uuid.UUID) ([]*types.Mensaje, error)
}

type chatService struct {
	db          *gorm.DB
	log         *logger.Logger
	mensajeRepo repos.MensajeRepo
	callLogRepo repos.AICallLogRepo
	model       ChatModel
}

func NewChatService(db *gorm.DB, baseLog *logger.Logger, mensajeRepo repos.MensajeRepo, callLogRepo repos.AICallLogRepo, model ChatModel) ChatService {
	return &chatService{
		db:          db,
		log:         baseLog.With("service", "ChatService"),
		mensajeRepo: mensajeRepo,
		callLogRepo: callLogRepo,
		model:       model,
	}
}

func (cs *chatService) Chat(ctx context.Context, userID uuid.UUID, mensaje, nivelIdioma, idiomaObjetivo string) (*ChatResult, error) {
	if nivelIdioma == "" {
		nivelIdioma = "principiante"
	}
	if idiomaObjetivo == "" {
		idiomaObjetivo = "inglés"
	}

	prompt := buildChatPrompt(mensaje, nivelIdioma, idiomaObjetivo)

	var respuesta string
	var correccion *string

	start := time.Now()
	raw, genErr := cs.model.Generate(ctx, prompt)
	cs.logCall(ctx, &userID, prompt, raw, start, genErr)
	if genErr != nil {
		cs.log.Warn("Local model unavailable, using fallback reply", "error", genErr)
		respuesta = fmt.Sprintf(
			"El modelo local no está disponible. Inicia Ollama con `ollama serve` y descarga el modelo con `ollama pull %s`.",
			cs.model.Model(),
		)
	} else {
		respuesta, correccion = extractTutorReply(raw)
	}

	registro := &types.Mensaje{
		TextoUsuario: mensaje,
		RespuestaIA:  respuesta,
		CorreccionIA: correccion,
		UserID:       userID,
	}
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cs.mensajeRepo.Create(ctx, tx, registro)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return &ChatResult{
		Respuesta:  respuesta,
		Correccion: correccion,
		MensajeID:  registro.ID,
	}, nil
}

func (cs *chatService) History(ctx context.Context, userID uuid.UUID) ([]*types.Mensaje, error) {
	return cs.mensajeRepo.ListByUserID(ctx, nil, userID)
}

// extractTutorReply pulls the tutor's two-field JSON envelope out of the
// model's free-text output. The scan is greedy from the first "{" to the
// last "}" and spans newlines; with multiple or nested JSON-ish regions in
// the output it can grab too much, in which case the whole raw text becomes
// the reply. Best-effort by contract.
func extractTutorReply(raw string) (string, *string) {
	block, ok := jsonBlock(raw)
	if !ok {
		return raw, nil
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return raw, nil
	}
	respuesta := raw
	if s, ok := parsed["respuesta"].(string); ok {
		respuesta = s
	}
	var correccion *string
	if s, ok := parsed["correccion"].(string); ok && s != "" {
		correccion = &s
	}
	return respuesta, correccion
}

func jsonBlock(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

func (cs *chatService) logCall(ctx context.Context, userID *uuid.UUID, prompt, response string, start time.Time, callErr error) {
	entry := &types.AICallLog{
		UserID:     userID,
		CallType:   "chat",
		Proveedor:  "local",
		Model:      cs.model.Model(),
		Success:    callErr == nil,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if usage, err := json.Marshal(map[string]int{
		"prompt_chars":   len(prompt),
		"response_chars": len(response),
	}); err == nil {
		entry.Usage = datatypes.JSON(usage)
	}
	if err := cs.callLogRepo.Create(ctx, nil, entry); err != nil {
		cs.log.Warn("Failed to write AI call log", "error", err)
	}
}
