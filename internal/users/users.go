package users

import (
	"context"
	"encoding/json"

	"rrrgame/internal/auth"
	"rrrgame/internal/httperr"
	"rrrgame/internal/storage"
)

// GameInfo records which instance of a given game type the user is in.
type GameInfo struct {
	GameID  string `json:"game_id"`
	ChunkID string `json:"chunk_id"`
}

// Entry is the stored user record, keyed by username. The password is kept
// only as an argon2id hash plus its salt.
type Entry struct {
	Email        string              `json:"email"`
	Hash         string              `json:"hash"`
	Salt         string              `json:"salt"`
	CurrentGames map[string]GameInfo `json:"current_games"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type publicInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Service implements account management on top of the key-value store.
type Service struct {
	store  storage.Store
	tokens *auth.TokenIssuer
}

// NewService wires the store and token issuer.
func NewService(store storage.Store, tokens *auth.TokenIssuer) *Service {
	return &Service{store: store, tokens: tokens}
}

// Register creates a user entry and, like a successful login, hands the
// fresh user a token straight away.
func (s *Service) Register(ctx context.Context, body string) (string, error) {
	var req createUserRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil ||
		req.Username == "" || req.Email == "" || req.Password == "" {
		return "", httperr.BadRequest("Create user request body has invalid format.")
	}

	if _, ok, err := s.store.Get(ctx, req.Username); err != nil {
		return "", httperr.Internal("User lookup failed")
	} else if ok {
		return "", httperr.Conflict("User already exists.")
	}

	hash, salt, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", httperr.Internal("Password hashing failed")
	}

	entry := Entry{
		Email:        req.Email,
		Hash:         hash,
		Salt:         salt,
		CurrentGames: make(map[string]GameInfo),
	}
	if err := s.writeEntry(ctx, req.Username, entry); err != nil {
		return "", err
	}

	return s.tokenBody(req.Username)
}

// Login verifies the password and returns a token body.
func (s *Service) Login(ctx context.Context, body string) (string, error) {
	var req loginRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil ||
		req.Username == "" || req.Password == "" {
		return "", httperr.BadRequest("Login request body has invalid format.")
	}

	entry, err := s.entry(ctx, req.Username)
	if err != nil {
		return "", httperr.Unauthorized("User doesn't exist")
	}
	if !auth.VerifyPassword(req.Password, entry.Hash, entry.Salt) {
		return "", httperr.Unauthorized("Password incorrect")
	}

	return s.tokenBody(req.Username)
}

// Get returns the public view of a user: username and email only.
func (s *Service) Get(ctx context.Context, username string) (string, error) {
	entry, err := s.entry(ctx, username)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(publicInfo{Username: username, Email: entry.Email})
	if err != nil {
		return "", httperr.Internal("Encoding user info failed")
	}
	return string(raw), nil
}

// CurrentGameInfo returns the user's recorded game of the given type, or nil
// if they have none.
func (s *Service) CurrentGameInfo(ctx context.Context, username, game string) (*GameInfo, error) {
	entry, err := s.entry(ctx, username)
	if err != nil {
		return nil, err
	}
	info, ok := entry.CurrentGames[game]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

// SetCurrentGame records the user's current game of the given type.
func (s *Service) SetCurrentGame(ctx context.Context, username, game string, info GameInfo) error {
	entry, err := s.entry(ctx, username)
	if err != nil {
		return err
	}
	if entry.CurrentGames == nil {
		entry.CurrentGames = make(map[string]GameInfo)
	}
	entry.CurrentGames[game] = info
	return s.writeEntry(ctx, username, entry)
}

func (s *Service) entry(ctx context.Context, username string) (Entry, error) {
	raw, ok, err := s.store.Get(ctx, username)
	if err != nil {
		return Entry{}, httperr.Internal("User lookup failed")
	}
	if !ok {
		return Entry{}, httperr.NotFound("User doesn't exist")
	}
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Entry{}, httperr.Internal("User entry is corrupt")
	}
	return entry, nil
}

func (s *Service) writeEntry(ctx context.Context, username string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return httperr.Internal("Encoding user entry failed")
	}
	if err := s.store.Set(ctx, username, string(raw)); err != nil {
		return httperr.Internal("Writing user entry failed")
	}
	return nil
}

func (s *Service) tokenBody(username string) (string, error) {
	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", httperr.Internal("Issuing token failed")
	}
	raw, err := json.Marshal(tokenResponse{AccessToken: token})
	if err != nil {
		return "", httperr.Internal("Encoding token failed")
	}
	return string(raw), nil
}
