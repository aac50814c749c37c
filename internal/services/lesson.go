package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/polyia/polyia-backend/internal/apierr"
	"github.com/polyia/polyia-backend/internal/logger"
	"github.com/polyia/polyia-backend/internal/repos"
	"github.com/polyia/polyia-backend/internal/types"
)

// LessonProvider is one cloud model behind the /leccion/generar endpoint.
// Adding a provider means adding an implementation and registering it; the
// dispatch itself never grows.
type LessonProvider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, prompt string) (string, error)
}

const defaultProvider = "openai"

type LessonService interface {
	Generate(ctx context.Context, userID uuid.UUID, tema, nivelIdioma, idiomaObjetivo, proveedor string) (*types.Leccion, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.Leccion, error)
}

type lessonService struct {
	db          *gorm.DB
	log         *logger.Logger
	leccionRepo repos.LeccionRepo
	callLogRepo repos.AICallLogRepo
	providers   map[string]LessonProvider
}

func NewLessonService(db *gorm.DB, baseLog *logger.Logger, leccionRepo repos.LeccionRepo, callLogRepo repos.AICallLogRepo, providers ...LessonProvider) LessonService {
	byName := make(map[string]LessonProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &lessonService{
		db:          db,
		log:         baseLog.With("service", "LessonService"),
		leccionRepo: leccionRepo,
		callLogRepo: callLogRepo,
		providers:   byName,
	}
}

func (ls *lessonService) Generate(ctx context.Context, userID uuid.UUID, tema, nivelIdioma, idiomaObjetivo, proveedor string) (*types.Leccion, error) {
	if nivelIdioma == "" {
		nivelIdioma = "principiante"
	}
	if idiomaObjetivo == "" {
		idiomaObjetivo = "inglés"
	}

	// Unknown tags fall through to the default provider rather than
	// failing; the closed set is enforced at the HTTP layer.
	provider, ok := ls.providers[proveedor]
	if !ok {
		provider = ls.providers[defaultProvider]
	}
	if provider == nil {
		return nil, apierr.Unavailable("proveedor_no_configurado", fmt.Errorf("proveedor '%s' no disponible", proveedor))
	}

	prompt := buildLessonPrompt(tema, nivelIdioma, idiomaObjetivo)

	start := time.Now()
	contenido, genErr := provider.Generate(ctx, prompt)
	ls.logCall(ctx, &userID, "leccion", provider, prompt, contenido, start, genErr)
	if genErr != nil {
		return nil, genErr
	}

	leccion := &types.Leccion{
		Tema:        tema,
		Contenido:   contenido,
		ProveedorIA: provider.Name(),
		UserID:      userID,
	}
	err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ls.leccionRepo.Create(ctx, tx, leccion)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}
	return leccion, nil
}

func (ls *lessonService) List(ctx context.Context, userID uuid.UUID) ([]*types.Leccion, error) {
	return ls.leccionRepo.ListByUserID(ctx, nil, userID)
}

// logCall audits one outbound model call. Best-effort: the audit row is
// never allowed to fail the request.
func (ls *lessonService) logCall(ctx context.Context, userID *uuid.UUID, callType string, provider LessonProvider, prompt, response string, start time.Time, callErr error) {
	entry := &types.AICallLog{
		UserID:     userID,
		CallType:   callType,
		Proveedor:  provider.Name(),
		Model:      provider.Model(),
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
	if err := ls.callLogRepo.Create(ctx, nil, entry); err != nil {
		ls.log.Warn("Failed to write AI call log", "error", err)
	}
}
