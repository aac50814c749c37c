package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyia/polyia-backend/internal/clients/localmodel"
	"github.com/polyia/polyia-backend/internal/repos"
	"github.com/polyia/polyia-backend/internal/types"
)

func TestExtractTutorReply(t *testing.T) {
	correccion := "Se dice 'quiero', no 'quero'."
	cases := []struct {
		name           string
		raw            string
		wantRespuesta  string
		wantCorreccion *string
	}{
		{
			name:           "json embedded in prose",
			raw:            "Claro, aquí tienes: {\"respuesta\": \"¡Hola! ¿Cómo estás?\", \"correccion\": null} espero que ayude",
			wantRespuesta:  "¡Hola! ¿Cómo estás?",
			wantCorreccion: nil,
		},
		{
			name:           "correction present",
			raw:            "{\"respuesta\": \"Muy bien.\", \"correccion\": \"Se dice 'quiero', no 'quero'.\"}",
			wantRespuesta:  "Muy bien.",
			wantCorreccion: &correccion,
		},
		{
			name:           "empty correction treated as none",
			raw:            "{\"respuesta\": \"Hola\", \"correccion\": \"\"}",
			wantRespuesta:  "Hola",
			wantCorreccion: nil,
		},
		{
			name:           "no json at all",
			raw:            "Hola, soy tu tutor.",
			wantRespuesta:  "Hola, soy tu tutor.",
			wantCorreccion: nil,
		},
		{
			name:           "unparseable braces fall back to raw",
			raw:            "sin formato { esto no es json }",
			wantRespuesta:  "sin formato { esto no es json }",
			wantCorreccion: nil,
		},
		{
			// The greedy scan spans both objects and fails to parse,
			// so the raw text wins.
			name:           "two json objects fall back to raw",
			raw:            "{\"respuesta\": \"a\"} y {\"respuesta\": \"b\"}",
			wantRespuesta:  "{\"respuesta\": \"a\"} y {\"respuesta\": \"b\"}",
			wantCorreccion: nil,
		},
		{
			name:           "json without respuesta key keeps raw",
			raw:            "{\"otro\": \"campo\"}",
			wantRespuesta:  "{\"otro\": \"campo\"}",
			wantCorreccion: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			respuesta, correccion := extractTutorReply(tc.raw)
			assert.Equal(t, tc.wantRespuesta, respuesta)
			if tc.wantCorreccion == nil {
				assert.Nil(t, correccion)
			} else {
				require.NotNil(t, correccion)
				assert.Equal(t, *tc.wantCorreccion, *correccion)
			}
		})
	}
}

func TestChat_ParsesModelReply(t *testing.T) {
	testDB := newTestDB(t)
	user := seedUser(t, testDB)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response": "{\"respuesta\": \"¡Hola Ana!\", \"correccion\": null}"}`))
	}))
	defer server.Close()

	log := newTestLogger(t)
	model := localmodel.New(log, localmodel.Config{URL: server.URL, Model: "qwen2.5:3b"})
	chatService := NewChatService(testDB, log,
		repos.NewMensajeRepo(testDB, log),
		repos.NewAICallLogRepo(testDB, log),
		model,
	)

	result, err := chatService.Chat(context.Background(), user.ID, "hola", "", "")
	require.NoError(t, err)
	assert.Equal(t, "¡Hola Ana!", result.Respuesta)
	assert.Nil(t, result.Correccion)
	assert.NotEqual(t, "", result.MensajeID.String())

	var stored types.Mensaje
	require.NoError(t, testDB.Where("id = ?", result.MensajeID).First(&stored).Error)
	assert.Equal(t, "hola", stored.TextoUsuario)
	assert.Equal(t, "¡Hola Ana!", stored.RespuestaIA)
	assert.Nil(t, stored.CorreccionIA)
}

type stubChatModel struct {
	out string
}

func (m *stubChatModel) Model() string { return "stub" }

func (m *stubChatModel) Generate(context.Context, string) (string, error) {
	return m.out, nil
}

func TestChatHistory_NewestFirst(t *testing.T) {
	testDB := newTestDB(t)
	user := seedUser(t, testDB)
	log := newTestLogger(t)
	mensajeRepo := repos.NewMensajeRepo(testDB, log)
	chatService := NewChatService(testDB, log,
		mensajeRepo,
		repos.NewAICallLogRepo(testDB, log),
		&stubChatModel{out: "hola"},
	)

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	for i, texto := range []string{"m1", "m2", "m3"} {
		mensaje := &types.Mensaje{
			TextoUsuario: texto,
			RespuestaIA:  "r",
			UserID:       user.ID,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, mensajeRepo.Create(context.Background(), nil, mensaje))
	}

	mensajes, err := chatService.History(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, mensajes, 3)
	assert.Equal(t, "m3", mensajes[0].TextoUsuario)
	assert.Equal(t, "m2", mensajes[1].TextoUsuario)
	assert.Equal(t, "m1", mensajes[2].TextoUsuario)
}

func TestChat_FallbackWhenModelUnreachable(t *testing.T) {
	testDB := newTestDB(t)
	user := seedUser(t, testDB)

	// A server that is already closed guarantees a connection error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	log := newTestLogger(t)
	model := localmodel.New(log, localmodel.Config{URL: server.URL, Model: "qwen2.5:3b"})
	mensajeRepo := repos.NewMensajeRepo(testDB, log)
	chatService := NewChatService(testDB, log,
		mensajeRepo,
		repos.NewAICallLogRepo(testDB, log),
		model,
	)

	result, err := chatService.Chat(context.Background(), user.ID, "hola", "", "")
	require.NoError(t, err)
	assert.Contains(t, result.Respuesta, "El modelo local no está disponible")
	assert.Contains(t, result.Respuesta, "ollama pull qwen2.5:3b")
	assert.Nil(t, result.Correccion)

	// The exchange is still persisted, exactly once.
	count, err := mensajeRepo.CountByUserID(context.Background(), nil, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	var logged types.AICallLog
	require.NoError(t, testDB.Where("call_type = ?", "chat").First(&logged).Error)
	assert.False(t, logged.Success)
	assert.Equal(t, "local", logged.Proveedor)
}
