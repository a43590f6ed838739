package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rrrgame/internal/auth"
	"rrrgame/internal/game"
	"rrrgame/internal/httperr"
	"rrrgame/internal/protocol"
	"rrrgame/internal/users"
)

// Resources the router recognises.
const (
	resourceSessions = "/sessions"
	resourceUsers    = "/users"
	resourceGame     = "/rrr-game"
	resourceSleep    = "/sleep"
)

var (
	errNotFound       = httperr.NotFound("Route not found")
	errNotImplemented = httperr.NotImplemented("Method not implemented for route")
)

// Handler routes parsed requests to the user and game services.
type Handler struct {
	users  *users.Service
	game   *game.Service
	tokens *auth.TokenIssuer

	// sleepFor is the artificial delay of the legacy /sleep route; it is a
	// field so tests don't have to wait the full duration.
	sleepFor time.Duration
}

// New wires the router to its services.
func New(users *users.Service, game *game.Service, tokens *auth.TokenIssuer) *Handler {
	return &Handler{users: users, game: game, tokens: tokens, sleepFor: 5 * time.Second}
}

// Process turns one raw request into raw response bytes. This is the single
// place where a domain failure becomes a wire status and error body.
func (h *Handler) Process(ctx context.Context, raw string) string {
	req, err := protocol.Parse(raw)
	if err != nil {
		return protocol.FromError(httperr.BadRequest("Request is not a valid HTTP request")).Render()
	}

	logrus.WithFields(logrus.Fields{
		"method":   req.Method,
		"resource": req.Resource,
	}).Debug("request")

	rsp, err := h.dispatch(ctx, req)
	if err != nil {
		return protocol.FromError(err).Render()
	}
	return rsp.Render()
}

func (h *Handler) dispatch(ctx context.Context, req *protocol.Request) (protocol.Response, error) {
	// Preflight capability discovery is answered without authentication.
	if req.Method == protocol.MethodOptions {
		return h.options(req)
	}

	// Routes with no auth.
	if req.Resource == resourceSessions && req.ID == "" && req.Method == protocol.MethodPost {
		return jsonResult(h.users.Login(ctx, req.Body))
	}
	if req.Resource == resourceUsers && req.ID == "" && req.Method == protocol.MethodPost {
		return jsonResult(h.users.Register(ctx, req.Body))
	}
	if req.Resource == resourceSleep && req.Method == protocol.MethodGet {
		// Legacy slow route; blocks only the worker serving this connection.
		time.Sleep(h.sleepFor)
		return protocol.OK("{}"), nil
	}

	// Everything else requires a principal.
	username, err := h.authenticate(req)
	if err != nil {
		return protocol.Response{}, err
	}

	switch req.Resource {
	case resourceSessions:
		if req.Method == protocol.MethodDelete {
			// Logout would mean revoking a stateless token.
			return protocol.Response{}, errNotImplemented
		}
		return protocol.Response{}, errNotFound
	case resourceUsers:
		return h.dispatchUsers(ctx, req, username)
	case resourceGame:
		return h.dispatchGame(ctx, req, username)
	}
	return protocol.Response{}, errNotFound
}

// authenticate extracts and verifies the bearer token. A missing or
// malformed header is a gate failure (403); a bad token is 401.
func (h *Handler) authenticate(req *protocol.Request) (string, error) {
	header, ok := req.Headers["Authorization"]
	if !ok {
		return "", httperr.Forbidden("Authorization header missing")
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", httperr.Forbidden("Authorization header is not a bearer token")
	}
	return h.tokens.Verify(token)
}

func (h *Handler) dispatchUsers(ctx context.Context, req *protocol.Request, username string) (protocol.Response, error) {
	if req.ID == "" {
		return protocol.Response{}, errNotFound
	}
	if req.ID != username {
		return protocol.Response{}, httperr.Forbidden("You are not authorized to access this user.")
	}

	switch req.Method {
	case protocol.MethodGet:
		return jsonResult(h.users.Get(ctx, username))
	case protocol.MethodPost, protocol.MethodDelete:
		return protocol.Response{}, errNotImplemented
	}
	return protocol.Response{}, errNotFound
}

func (h *Handler) dispatchGame(ctx context.Context, req *protocol.Request, username string) (protocol.Response, error) {
	if req.ID == "" {
		switch req.Method {
		case protocol.MethodPost:
			return jsonResult(h.game.CreateGame(ctx, username))
		case protocol.MethodGet:
			// Listing available games.
			return protocol.Response{}, errNotImplemented
		}
		return protocol.Response{}, errNotFound
	}

	if req.SubResource != "" {
		switch req.SubResource {
		case "actions":
			if req.Method == protocol.MethodPost {
				coord, err := coordFromRequest(req)
				if err != nil {
					return protocol.Response{}, err
				}
				return jsonResult(h.game.DoAction(ctx, username, req.Body, coord, req.ID))
			}
		case "moves":
			if req.Method == protocol.MethodPost {
				return protocol.Response{}, errNotImplemented
			}
		case "players":
			// Joining and leaving someone else's game.
			if req.Method == protocol.MethodPost || req.Method == protocol.MethodDelete {
				return protocol.Response{}, errNotImplemented
			}
		}
		return protocol.Response{}, errNotFound
	}

	switch req.Method {
	case protocol.MethodGet:
		coord, err := coordFromRequest(req)
		if err != nil {
			return protocol.Response{}, err
		}
		return jsonResult(h.game.Gamestate(ctx, username, coord, req.ID))
	case protocol.MethodDelete:
		return protocol.Response{}, errNotImplemented
	}
	return protocol.Response{}, errNotFound
}

// options advertises the allowed methods for a resource shape.
func (h *Handler) options(req *protocol.Request) (protocol.Response, error) {
	var methods []string
	switch req.Resource {
	case resourceSessions:
		methods = []string{protocol.MethodPost, protocol.MethodDelete}
	case resourceUsers:
		if req.ID == "" {
			methods = []string{protocol.MethodPost}
		} else {
			methods = []string{protocol.MethodGet, protocol.MethodPost, protocol.MethodDelete}
		}
	case resourceGame:
		switch {
		case req.ID == "":
			methods = []string{protocol.MethodGet, protocol.MethodPost}
		case req.SubResource == "":
			methods = []string{protocol.MethodGet, protocol.MethodDelete}
		default:
			methods = []string{protocol.MethodPost, protocol.MethodDelete}
		}
	default:
		return protocol.Response{}, errNotFound
	}

	rsp := protocol.OK("")
	rsp.Headers = protocol.OptionsHeaders(methods)
	return rsp, nil
}

func jsonResult(body string, err error) (protocol.Response, error) {
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK(body), nil
}

func coordFromRequest(req *protocol.Request) (game.UserCoord, error) {
	x, err := intParam(req, "x", "X position missing or invalid.")
	if err != nil {
		return game.UserCoord{}, err
	}
	y, err := intParam(req, "y", "Y position missing or invalid.")
	if err != nil {
		return game.UserCoord{}, err
	}
	return game.UserCoord{X: x, Y: y}, nil
}

func intParam(req *protocol.Request, key, msg string) (int, error) {
	raw, ok := req.Param(key)
	if !ok {
		return 0, httperr.BadRequest(msg)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, httperr.BadRequest(msg)
	}
	return value, nil
}
