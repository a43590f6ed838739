package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrrgame/internal/auth"
	"rrrgame/internal/game"
	"rrrgame/internal/protocol"
	"rrrgame/internal/storage"
	"rrrgame/internal/users"
)

type testEnv struct {
	handler *Handler
	store   storage.Store
	tokens  *auth.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := storage.NewMemoryStore()
	tokens := auth.NewTokenIssuer("test", time.Hour)
	userSvc := users.NewService(store, tokens)
	gameSvc := game.NewService(store, userSvc)
	h := New(userSvc, gameSvc, tokens)
	h.sleepFor = time.Millisecond
	return &testEnv{handler: h, store: store, tokens: tokens}
}

// do runs one raw request through the handler and splits the raw response
// into status line and body.
func (e *testEnv) do(t *testing.T, raw string) (status, body string) {
	t.Helper()
	rsp := e.handler.Process(context.Background(), raw)
	require.True(t, strings.HasPrefix(rsp, "HTTP/1.1 "))
	head, body, ok := strings.Cut(rsp, "\r\n\r\n")
	require.True(t, ok, "response has no header/body separator")
	status = strings.TrimPrefix(strings.SplitN(head, "\r\n", 2)[0], "HTTP/1.1 ")
	return status, body
}

func request(method, target, token, body string) string {
	var b strings.Builder
	b.WriteString(method + " " + target + " HTTP/1.1\r\n")
	if token != "" {
		b.WriteString("Authorization: Bearer " + token + "\r\n")
	}
	b.WriteString("Content-Type: application/json\r\n\r\n")
	b.WriteString(body)
	return b.String()
}

func (e *testEnv) register(t *testing.T, username string) (token string) {
	t.Helper()
	status, body := e.do(t, request("POST", "/users", "",
		`{"username":"`+username+`","email":"`+username+`@example.com","password":"pw"}`))
	require.Equal(t, protocol.StatusOK, status)
	var rsp map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &rsp))
	require.NotEmpty(t, rsp["access_token"])
	return rsp["access_token"]
}

// seedGame writes a deterministic all-grass 3x3 world for a known game id,
// bypassing the random terrain of a real create.
func (e *testEnv) seedGame(t *testing.T, gameID, username string) {
	t.Helper()
	ctx := context.Background()
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			coord := game.ChunkCoord{X: dx, Y: dy}
			terrain := make([][]string, game.ChunkLength)
			for y := range terrain {
				row := make([]string, game.ChunkLength)
				for x := range row {
					row[x] = game.TileGrass
				}
				terrain[y] = row
			}
			chunk := game.Chunk{Coord: coord, Terrain: terrain, Users: map[string]game.UserCoord{}}
			if dx == 0 && dy == 0 {
				chunk.Users[username] = game.UserCoord{X: 0, Y: 0}
			}
			raw, err := json.Marshal(chunk)
			require.NoError(t, err)
			key := game.GameName + ":" + gameID + ":" + coord.ID()
			require.NoError(t, e.store.Set(ctx, key, string(raw)))
		}
	}
}

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	status, body := env.do(t, request("POST", "/sessions", "", `{"username":"alice","password":"pw"}`))
	assert.Equal(t, protocol.StatusOK, status)
	assert.Contains(t, body, "access_token")

	status, body = env.do(t, request("POST", "/sessions", "", `{"username":"alice","password":"wrong"}`))
	assert.Equal(t, protocol.StatusUnauthorized, status)
	assert.Contains(t, body, "error_message")

	status, _ = env.do(t, request("POST", "/sessions", "", `{"username":`))
	assert.Equal(t, protocol.StatusBadRequest, status)
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	status, body := env.do(t, request("POST", "/users", "",
		`{"username":"alice","email":"alice@example.com","password":"pw"}`))
	assert.Equal(t, protocol.StatusConflict, status)
	assert.JSONEq(t, `{"error_message":"User already exists."}`, body)
}

func TestGetUserRequiresMatchingPrincipal(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice")
	env.register(t, "bob")

	status, body := env.do(t, request("GET", "/users/alice", token, ""))
	assert.Equal(t, protocol.StatusOK, status)
	assert.JSONEq(t, `{"username":"alice","email":"alice@example.com"}`, body)

	status, _ = env.do(t, request("GET", "/users/bob", token, ""))
	assert.Equal(t, protocol.StatusForbidden, status)
}

func TestAuthGate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	t.Run("missing header", func(t *testing.T) {
		status, _ := env.do(t, request("GET", "/users/alice", "", ""))
		assert.Equal(t, protocol.StatusForbidden, status)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		raw := "GET /users/alice HTTP/1.1\r\nAuthorization: Basic abc\r\n\r\n"
		status, _ := env.do(t, raw)
		assert.Equal(t, protocol.StatusForbidden, status)
	})

	t.Run("invalid token", func(t *testing.T) {
		status, _ := env.do(t, request("GET", "/users/alice", "garbage.token.here", ""))
		assert.Equal(t, protocol.StatusUnauthorized, status)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other, err := auth.NewTokenIssuer("other", time.Hour).Issue("alice")
		require.NoError(t, err)
		status, _ := env.do(t, request("GET", "/users/alice", other, ""))
		assert.Equal(t, protocol.StatusUnauthorized, status)
	})
}

func TestRouteShapes(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice")

	t.Run("malformed request line", func(t *testing.T) {
		status, _ := env.do(t, "BREW /coffee HTCPCP/1.0\r\n\r\n")
		assert.Equal(t, protocol.StatusBadRequest, status)
	})

	t.Run("unknown resource", func(t *testing.T) {
		status, _ := env.do(t, request("GET", "/nope", token, ""))
		assert.Equal(t, protocol.StatusNotFound, status)
	})

	t.Run("recognised but unbuilt", func(t *testing.T) {
		for _, raw := range []string{
			request("DELETE", "/sessions", token, ""),
			request("POST", "/users/alice", token, "{}"),
			request("DELETE", "/users/alice", token, ""),
			request("GET", "/rrr-game", token, ""),
			request("DELETE", "/rrr-game/abc1234", token, ""),
			request("POST", "/rrr-game/abc1234/moves", token, "{}"),
			request("POST", "/rrr-game/abc1234/players", token, "{}"),
			request("DELETE", "/rrr-game/abc1234/players", token, ""),
		} {
			status, _ := env.do(t, raw)
			assert.Equal(t, protocol.StatusNotImplemented, status, "request: %q", raw)
		}
	})

	t.Run("users collection has no get", func(t *testing.T) {
		status, _ := env.do(t, request("GET", "/users", token, ""))
		assert.Equal(t, protocol.StatusNotFound, status)
	})
}

func TestCreateGetActFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice")

	status, body := env.do(t, request("POST", "/rrr-game", token, ""))
	require.Equal(t, protocol.StatusOK, status)

	var created struct {
		GameID              string         `json:"game_id"`
		UserCoord           game.UserCoord `json:"user_coord"`
		TopLeftVisibleCoord game.UserCoord `json:"top_left_visible_coord"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.Len(t, created.GameID, 7)
	assert.Equal(t, game.UserCoord{X: 0, Y: 0}, created.UserCoord)
	assert.Equal(t, game.UserCoord{X: -13, Y: -13}, created.TopLeftVisibleCoord)

	status, body = env.do(t, request("GET", "/rrr-game/"+created.GameID+"?x=0&y=0", token, ""))
	require.Equal(t, protocol.StatusOK, status)
	var visible game.VisibleGamestate
	require.NoError(t, json.Unmarshal([]byte(body), &visible))
	assert.Len(t, visible.Terrain, 3*game.ChunkLength)
	assert.Contains(t, visible.Users, "alice")

	status, _ = env.do(t, request("POST", "/rrr-game", token, ""))
	assert.Equal(t, protocol.StatusConflict, status)
}

func TestGamestateRequiresCoords(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice")
	env.seedGame(t, "test123", "alice")

	status, _ := env.do(t, request("GET", "/rrr-game/test123", token, ""))
	assert.Equal(t, protocol.StatusBadRequest, status)

	status, _ = env.do(t, request("GET", "/rrr-game/test123?x=0", token, ""))
	assert.Equal(t, protocol.StatusBadRequest, status)

	status, _ = env.do(t, request("GET", "/rrr-game/test123?x=0&y=0", token, ""))
	assert.Equal(t, protocol.StatusOK, status)
}

func TestActionRoute(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice")
	env.seedGame(t, "test123", "alice")

	status, body := env.do(t, request("POST", "/rrr-game/test123/actions?x=0&y=0", token, `{"move":"East"}`))
	require.Equal(t, protocol.StatusOK, status)
	assert.JSONEq(t,
		`{"user_coord":{"x":1,"y":0},"top_left_visible_coord":{"x":-13,"y":-13}}`, body)

	status, _ = env.do(t, request("POST", "/rrr-game/test123/actions?x=1&y=0", token, `{"move":"Sideways"}`))
	assert.Equal(t, protocol.StatusBadRequest, status)

	status, _ = env.do(t, request("POST", "/rrr-game/test123/actions", token, `{"move":"East"}`))
	assert.Equal(t, protocol.StatusBadRequest, status)
}

func TestOptionsPreflight(t *testing.T) {
	env := newTestEnv(t)

	rsp := env.handler.Process(context.Background(), "OPTIONS /users HTTP/1.1\r\n\r\n")
	assert.Contains(t, rsp, "HTTP/1.1 200 OK")
	assert.Contains(t, rsp, "Access-Control-Allow-Methods: POST")

	rsp = env.handler.Process(context.Background(), "OPTIONS /rrr-game HTTP/1.1\r\n\r\n")
	assert.Contains(t, rsp, "Access-Control-Allow-Methods: GET, POST")

	status, _ := env.do(t, "OPTIONS /nope HTTP/1.1\r\n\r\n")
	assert.Equal(t, protocol.StatusNotFound, status)
}

func TestSleepRouteNeedsNoAuth(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, "GET /sleep HTTP/1.1\r\n\r\n")
	assert.Equal(t, protocol.StatusOK, status)
}
