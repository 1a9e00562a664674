package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"booking-api/internal/apperr"
	"booking-api/internal/auth"
	"booking-api/internal/authz"
	"booking-api/internal/models"
	"booking-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	invalidCredentials = "Invalid email or password"
	invalidToken       = "Invalid or expired authentication token"
	invalidGoogleToken = "Invalid Google id token"
	emailInUse         = "Email already in use"
)

// Manager is the identity store front: sign-in flows, session tokens and
// user administration.
type Manager struct {
	repo     Repository
	tokens   *auth.Manager
	external auth.ExternalVerifier
	val      *validation.Validator
	log      *slog.Logger
	now      func() time.Time
}

func NewManager(repo Repository, tokens *auth.Manager, external auth.ExternalVerifier, val *validation.Validator, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		repo:     repo,
		tokens:   tokens,
		external: external,
		val:      val,
		log:      log,
		now:      time.Now,
	}
}

func (m *Manager) timestamp() time.Time {
	return m.now().UTC().Truncate(time.Millisecond)
}

// Register creates a credentials user. caller is the authenticated
// identity, if any, and must be an admin to grant a non-client role.
func (m *Manager) Register(ctx context.Context, req RegisterRequest, caller *authz.Identity) (AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Role = strings.TrimSpace(req.Role)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return AuthResponse{}, apperr.Validation("email, password and name are required")
	}
	if err := m.val.Check(req); err != nil {
		return AuthResponse{}, err
	}
	if err := authz.AuthorizeRoleAssignment(caller, req.Role); err != nil {
		return AuthResponse{}, err
	}

	if err := m.ensureEmailFree(ctx, req.Email); err != nil {
		return AuthResponse{}, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return AuthResponse{}, apperr.Internal(err, "hash password")
	}

	role := req.Role
	if role == "" {
		role = models.RoleClient
	}

	now := m.timestamp()
	user := models.User{
		ID:           primitive.NewObjectID().Hex(),
		AuthProvider: models.AuthProviderCredentials,
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.repo.Create(ctx, user); err != nil {
		return AuthResponse{}, storeError(err)
	}
	return m.session(user)
}

// Login fails the same way whether the user is missing, has no password
// or the password does not match.
func (m *Manager) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return AuthResponse{}, apperr.Validation("email and password are required")
	}

	user, err := m.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return AuthResponse{}, apperr.Unauthorized(invalidCredentials)
		}
		return AuthResponse{}, apperr.Internal(err, "database error")
	}
	if user.AuthProvider != models.AuthProviderCredentials || user.PasswordHash == "" {
		return AuthResponse{}, apperr.Unauthorized(invalidCredentials)
	}
	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return AuthResponse{}, apperr.Unauthorized(invalidCredentials)
	}
	return m.session(user)
}

// LoginWithGoogle verifies the id token and finds or creates the matching
// user. New users always get the client role.
func (m *Manager) LoginWithGoogle(ctx context.Context, idToken string) (AuthResponse, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return AuthResponse{}, apperr.Validation("idToken is required")
	}
	if m.external == nil {
		return AuthResponse{}, apperr.Unauthorized(invalidGoogleToken)
	}

	ext, err := m.external.Verify(ctx, idToken)
	if err != nil {
		m.log.Warn("auth google: verification failed", slog.String("error", err.Error()))
		return AuthResponse{}, apperr.Unauthorized(invalidGoogleToken)
	}

	user, err := m.repo.FindByExternal(ctx, ext.Provider, ext.Subject)
	if err == nil {
		return m.session(user)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return AuthResponse{}, apperr.Internal(err, "database error")
	}

	email := normalizeEmail(ext.Email)
	if email == "" {
		return AuthResponse{}, apperr.Unauthorized(invalidGoogleToken)
	}
	if err := m.ensureEmailFree(ctx, email); err != nil {
		return AuthResponse{}, err
	}

	now := m.timestamp()
	user = models.User{
		ID:           primitive.NewObjectID().Hex(),
		AuthProvider: ext.Provider,
		AuthID:       ext.Subject,
		Email:        email,
		Name:         ext.Name,
		Role:         models.RoleClient,
		AvatarURL:    ext.Picture,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.repo.Create(ctx, user); err != nil {
		return AuthResponse{}, storeError(err)
	}
	m.log.Info("auth google: user created", slog.String("user_id", user.ID))
	return m.session(user)
}

func (m *Manager) IssueToken(user models.User) (string, error) {
	token, err := m.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", apperr.Internal(err, "issue token")
	}
	return token, nil
}

// VerifyToken checks the signature and expiry, then re-reads the user so
// that tokens of deleted users stop working. The role comes from the store.
func (m *Manager) VerifyToken(ctx context.Context, token string) (authz.Identity, error) {
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return authz.Identity{}, apperr.Unauthorized(invalidToken)
	}

	user, err := m.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return authz.Identity{}, apperr.Unauthorized(invalidToken)
		}
		return authz.Identity{}, apperr.Internal(err, "database error")
	}
	return authz.Identity{UserID: user.ID, Role: user.Role}, nil
}

func (m *Manager) List(ctx context.Context) ([]models.User, error) {
	items, err := m.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "database error")
	}
	return items, nil
}

func (m *Manager) Get(ctx context.Context, id string) (models.User, error) {
	if !validation.IsObjectID(id) {
		return models.User{}, apperr.Validation("Invalid user id")
	}
	user, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return models.User{}, storeError(err)
	}
	return user, nil
}

func (m *Manager) Create(ctx context.Context, req CreateRequest) (models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.AuthProvider = strings.TrimSpace(req.AuthProvider)
	req.AuthID = strings.TrimSpace(req.AuthID)
	if err := m.val.Check(req); err != nil {
		return models.User{}, err
	}

	provider := req.AuthProvider
	if provider == "" {
		provider = models.AuthProviderCredentials
	}
	if err := checkAuthFields(provider, req.AuthID); err != nil {
		return models.User{}, err
	}
	if provider == models.AuthProviderGoogle && req.Password != "" {
		return models.User{}, apperr.Validation("password is only allowed for credentials users")
	}

	var hash string
	if req.Password != "" {
		h, err := auth.HashPassword(req.Password)
		if err != nil {
			return models.User{}, apperr.Internal(err, "hash password")
		}
		hash = h
	}

	role := req.Role
	if role == "" {
		role = models.RoleClient
	}

	now := m.timestamp()
	user := models.User{
		ID:           primitive.NewObjectID().Hex(),
		AuthProvider: provider,
		AuthID:       req.AuthID,
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         role,
		AvatarURL:    strings.TrimSpace(req.AvatarURL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.repo.Create(ctx, user); err != nil {
		return models.User{}, storeError(err)
	}
	return user, nil
}

// Update applies a partial update. Fields the caller may not edit must be
// removed beforehand with UpdateRequest.Restrict.
func (m *Manager) Update(ctx context.Context, id string, req UpdateRequest) (models.User, error) {
	if !validation.IsObjectID(id) {
		return models.User{}, apperr.Validation("Invalid user id")
	}

	existing, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return models.User{}, storeError(err)
	}

	set, err := buildUpdate(req)
	if err != nil {
		return models.User{}, err
	}
	if len(set) == 0 {
		return models.User{}, apperr.Validation("No fields to update")
	}

	provider := existing.AuthProvider
	if v, ok := set["authProvider"].(string); ok {
		provider = v
	}
	authID := existing.AuthID
	if req.AuthID.Present() {
		authID = req.AuthID.Value()
	}
	if err := checkAuthFields(provider, authID); err != nil {
		return models.User{}, err
	}

	if v, ok := set["password"].(string); ok {
		hash, err := auth.HashPassword(v)
		if err != nil {
			return models.User{}, apperr.Internal(err, "hash password")
		}
		delete(set, "password")
		set["passwordHash"] = hash
	}
	set["updatedAt"] = m.timestamp()

	user, err := m.repo.Update(ctx, id, set)
	if err != nil {
		return models.User{}, storeError(err)
	}
	return user, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if !validation.IsObjectID(id) {
		return apperr.Validation("Invalid user id")
	}
	deleted, err := m.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Internal(err, "database error")
	}
	if !deleted {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (m *Manager) session(user models.User) (AuthResponse, error) {
	token, err := m.IssueToken(user)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{Token: token, User: user.Info()}, nil
}

func (m *Manager) ensureEmailFree(ctx context.Context, email string) error {
	_, err := m.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return apperr.Conflict(emailInUse)
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil
	default:
		return apperr.Internal(err, "database error")
	}
}

// buildUpdate validates the present fields. A plain password is left under
// "password" for the caller to hash.
func buildUpdate(req UpdateRequest) (bson.M, error) {
	set := bson.M{}

	if req.AuthProvider.Present() {
		v, ok := req.AuthProvider.Get()
		if !ok || !models.IsValidAuthProvider(v) {
			return nil, apperr.Validation("authProvider must be one of: google, credentials")
		}
		set["authProvider"] = v
	}
	if req.AuthID.Present() {
		if v, ok := req.AuthID.Get(); ok && strings.TrimSpace(v) != "" {
			set["authId"] = strings.TrimSpace(v)
		} else {
			set["authId"] = nil
		}
	}
	if req.Email.Present() {
		v, ok := req.Email.Get()
		v = normalizeEmail(v)
		if !ok || !validation.IsEmailShape(v) {
			return nil, apperr.Validation("email must be a valid email address")
		}
		set["email"] = v
	}
	if req.Password.Present() {
		if v, ok := req.Password.Get(); ok && v != "" {
			set["password"] = v
		} else {
			set["passwordHash"] = nil
		}
	}
	if req.Name.Present() {
		v, ok := req.Name.Get()
		if !ok || strings.TrimSpace(v) == "" {
			return nil, apperr.Validation("name is required")
		}
		set["name"] = strings.TrimSpace(v)
	}
	if req.Phone.Present() {
		v, ok := req.Phone.Get()
		v = strings.TrimSpace(v)
		switch {
		case !ok || v == "":
			set["phone"] = nil
		case !validation.IsPhone(v):
			return nil, apperr.Validation("phone must be a valid phone number")
		default:
			set["phone"] = v
		}
	}
	if req.Role.Present() {
		v, ok := req.Role.Get()
		if !ok || !models.IsValidRole(v) {
			return nil, apperr.Validation("role must be one of: admin, provider, client")
		}
		set["role"] = v
	}
	if req.AvatarURL.Present() {
		if v, ok := req.AvatarURL.Get(); ok && strings.TrimSpace(v) != "" {
			set["avatarUrl"] = strings.TrimSpace(v)
		} else {
			set["avatarUrl"] = nil
		}
	}

	return set, nil
}

func checkAuthFields(provider, authID string) error {
	if provider == models.AuthProviderGoogle && strings.TrimSpace(authID) == "" {
		return apperr.Validation("authId is required for google users")
	}
	return nil
}

func storeError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("User not found")
	case mongo.IsDuplicateKeyError(err):
		return apperr.Conflict(emailInUse)
	default:
		return apperr.Internal(err, "database error")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
