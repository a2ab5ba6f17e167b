package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"confrarias/internal/model"
	"confrarias/internal/pkg"
	"confrarias/internal/repository/mysql"
	"confrarias/internal/repository/redis"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	// bcrypt rejects longer input
	maxPasswordLen = 72
)

type RegisterInput struct {
	Username string
	Name     string
	Email    string
	Password string
	Role     string
	Code     string
}

// ProfileUpdate lists the editable profile columns; nil fields are left alone.
type ProfileUpdate struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	District    *string `json:"district"`
	Council     *string `json:"council"`
	Address     *string `json:"address"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
}

type UserService struct {
	repo     *mysql.UserRepository
	sessions *redis.SessionRepository
	emailSvc *EmailService
	uploads  *UploadService
	tokens   *pkg.TokenManager
	log      *zap.Logger
}

func NewUserService(repo *mysql.UserRepository, sessions *redis.SessionRepository, emailSvc *EmailService,
	uploads *UploadService, tokens *pkg.TokenManager, log *zap.Logger) *UserService {
	return &UserService{
		repo:     repo,
		sessions: sessions,
		emailSvc: emailSvc,
		uploads:  uploads,
		tokens:   tokens,
		log:      log,
	}
}

// Register creates a Confrade account once the e-mail code checks out.
// Admin accounts are never self-assigned and confraria accounts come from
// an approved submission.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if n := utf8.RuneCountInString(in.Username); n < 3 || n > 64 {
		return nil, invalid("O nome de utilizador deve ter entre 3 e 64 caracteres.")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err = checkPassword(in.Password); err != nil {
		return nil, err
	}
	role := model.RoleConfrade
	if in.Role != "" {
		if role, err = model.ParseRole(in.Role); err != nil {
			return nil, invalid("Perfil inválido.")
		}
	}
	switch role {
	case model.RoleAdmin:
		return nil, invalid("Não é possível criar contas de administrador.")
	case model.RoleConfraria:
		return nil, invalid("As contas de confraria são criadas após aprovação da candidatura.")
	}

	if err = s.ensureAvailable(ctx, in.Username, email); err != nil {
		return nil, err
	}
	ok, err := s.emailSvc.Verify(ctx, redis.ScopeRegister, email, in.Code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid("Código de verificação inválido ou expirado.")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	name := in.Name
	if name == "" {
		name = in.Username
	}
	user := &model.User{
		ID:       pkg.NewID(),
		Username: in.Username,
		Password: string(hash),
		Email:    email,
		Role:     role,
		Status:   model.UserAtivo,
		Name:     name,
		Gallery:  []model.GalleryImage{},
	}
	if err = s.repo.Create(ctx, user); err != nil {
		return nil, storeErr(s.log, "user.create", err, "")
	}
	s.log.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

func (s *UserService) ensureAvailable(ctx context.Context, username, email string) error {
	for _, login := range []string{username, email} {
		_, err := s.repo.FindByUsername(ctx, login)
		if err == nil {
			return invalid("Nome de utilizador ou e-mail já registado.")
		}
		if !errors.Is(err, mysql.ErrNotFound) {
			return storeErr(s.log, "user.ensure_available", err, "")
		}
	}
	return nil
}

// Login accepts a username or an e-mail. A new login replaces the previous
// session.
func (s *UserService) Login(ctx context.Context, login, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(login))
	if errors.Is(err, mysql.ErrNotFound) {
		return nil, &Error{Kind: ErrUnauthenticated, Msg: "Credenciais inválidas."}
	}
	if err != nil {
		return nil, storeErr(s.log, "user.login", err, "")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, &Error{Kind: ErrUnauthenticated, Msg: "Credenciais inválidas."}
	}
	if user.Status != model.UserAtivo {
		return nil, denied("A sua conta está inativa.")
	}
	return s.issue(ctx, user.ID)
}

func (s *UserService) issue(ctx context.Context, userID string) (*pkg.Pair, error) {
	pair, err := s.tokens.GeneratePair(userID)
	if err != nil {
		return nil, err
	}
	if err = s.sessions.AddUserToken(ctx, userID, pair.AccessToken); err != nil {
		s.log.Error("store session failed", zap.String("user_id", userID), zap.Error(err))
		return nil, upstream("Não foi possível iniciar sessão.")
	}
	return pair, nil
}

func (s *UserService) Logout(ctx context.Context, caller Caller) error {
	if !caller.Authenticated() {
		return &Error{Kind: ErrUnauthenticated, Msg: "É necessário iniciar sessão."}
	}
	if err := s.sessions.DeleteUserToken(ctx, caller.ID); err != nil {
		s.log.Error("delete session failed", zap.String("user_id", caller.ID), zap.Error(err))
		return upstream("Não foi possível terminar a sessão.")
	}
	return nil
}

// Refresh issues a new pair for an active account holding a valid refresh token.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, &Error{Kind: ErrUnauthenticated, Msg: "Sessão expirada. Inicie sessão novamente."}
	}
	user, err := s.repo.FindCaller(ctx, claims.UserID)
	if errors.Is(err, mysql.ErrNotFound) {
		return nil, &Error{Kind: ErrUnauthenticated, Msg: "Sessão expirada. Inicie sessão novamente."}
	}
	if err != nil {
		return nil, storeErr(s.log, "user.refresh", err, "")
	}
	if user.Status != model.UserAtivo {
		return nil, denied("A sua conta está inativa.")
	}
	return s.issue(ctx, user.ID)
}

// ChangePassword also ends the current session.
func (s *UserService) ChangePassword(ctx context.Context, caller Caller, oldPassword, newPassword string) error {
	if !caller.Authenticated() {
		return &Error{Kind: ErrUnauthenticated, Msg: "É necessário iniciar sessão."}
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	user, err := s.repo.FindByID(ctx, caller.ID)
	if err != nil {
		return storeErr(s.log, "user.change_password", err, "Utilizador não encontrado.")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return invalid("A palavra-passe atual está incorreta.")
	}
	if err = s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	return s.Logout(ctx, caller)
}

func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	ok, err := s.emailSvc.Verify(ctx, redis.ScopeReset, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return invalid("Código de verificação inválido ou expirado.")
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return storeErr(s.log, "user.reset_password", err, "Utilizador não encontrado.")
	}
	if err = s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	if err = s.sessions.DeleteUserToken(ctx, user.ID); err != nil {
		s.log.Warn("delete session after password reset failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLen {
		return invalid("A palavra-passe deve ter pelo menos 8 caracteres.")
	}
	if len(password) > maxPasswordLen {
		return invalid("A palavra-passe não pode ter mais de 72 bytes.")
	}
	return nil
}

func hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, invalid("A palavra-passe não pode ter mais de 72 bytes.")
	}
	return hash, err
}

func (s *UserService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err = s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return storeErr(s.log, "user.update_password", err, "")
	}
	return nil
}

// Caller resolves the profile behind an authenticated subject id.
func (s *UserService) Caller(ctx context.Context, userID string) (Caller, error) {
	user, err := s.repo.FindCaller(ctx, userID)
	if errors.Is(err, mysql.ErrNotFound) {
		return Caller{}, &Error{Kind: ErrUnauthenticated, Msg: "É necessário iniciar sessão."}
	}
	if err != nil {
		return Caller{}, storeErr(s.log, "user.caller", err, "")
	}
	return Caller{ID: user.ID, Role: user.Role, Status: user.Status}, nil
}

// GetProfile hides inactive profiles from everyone but their owner and admins.
func (s *UserService) GetProfile(ctx context.Context, caller Caller, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(s.log, "user.get", err, "Perfil não encontrado.")
	}
	if user.Status != model.UserAtivo && !caller.IsAdmin() && caller.ID != user.ID {
		return nil, notFound("Perfil não encontrado.")
	}
	return user, nil
}

// ListConfrarias is the public directory of active confrarias.
func (s *UserService) ListConfrarias(ctx context.Context, offset, limit int) ([]model.User, error) {
	list, err := s.repo.List(ctx, mysql.UserFilter{
		Role:   model.RoleConfraria,
		Status: model.UserAtivo,
		Offset: max(offset, 0),
		Limit:  clampLimit(limit, 50, 100),
	})
	if err != nil {
		return nil, storeErr(s.log, "user.list_confrarias", err, "")
	}
	return list, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, caller Caller, id string, upd ProfileUpdate) error {
	if err := Authorize(caller, ActionEditProfile, id).Err(); err != nil {
		return err
	}
	fields := map[string]any{}
	set := func(col string, v *string, maxRunes int) error {
		if v == nil {
			return nil
		}
		val := strings.TrimSpace(*v)
		if utf8.RuneCountInString(val) > maxRunes {
			return invalid("O campo " + col + " é demasiado longo.")
		}
		fields[col] = val
		return nil
	}
	for _, f := range []struct {
		col string
		v   *string
		max int
	}{
		{"name", upd.Name, 128},
		{"phone", upd.Phone, 32},
		{"district", upd.District, 64},
		{"council", upd.Council, 64},
		{"address", upd.Address, 255},
		{"website", upd.Website, 255},
		{"description", upd.Description, 5000},
	} {
		if err := set(f.col, f.v, f.max); err != nil {
			return err
		}
	}
	if w, ok := fields["website"].(string); ok && w != "" {
		u, err := url.Parse(w)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("Endereço do site inválido.")
		}
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return storeErr(s.log, "user.update_profile", err, "Perfil não encontrado.")
	}
	return nil
}

func (s *UserService) AddGalleryImage(ctx context.Context, caller Caller, id string, img ImageRef) (*model.GalleryImage, error) {
	if err := Authorize(caller, ActionEditProfile, id).Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(img.URL) == "" {
		return nil, invalid("Imagem sem endereço.")
	}
	g := &model.GalleryImage{ID: pkg.NewID(), UserID: id, URL: img.URL, Hint: img.Hint}
	if err := s.repo.AddGalleryImage(ctx, g); err != nil {
		return nil, storeErr(s.log, "user.add_gallery_image", err, "Perfil não encontrado.")
	}
	return g, nil
}

func (s *UserService) RemoveGalleryImage(ctx context.Context, caller Caller, id, imageID string) error {
	if err := Authorize(caller, ActionEditProfile, id).Err(); err != nil {
		return err
	}
	if err := s.repo.RemoveGalleryImage(ctx, id, imageID); err != nil {
		return storeErr(s.log, "user.remove_gallery_image", err, "Imagem não encontrada.")
	}
	return nil
}

func (s *UserService) SetBanner(ctx context.Context, caller Caller, id string, data []byte) (string, error) {
	return s.setProfileImage(ctx, caller, id, FolderBanners, "banner_url", data)
}

func (s *UserService) SetLogo(ctx context.Context, caller Caller, id string, data []byte) (string, error) {
	return s.setProfileImage(ctx, caller, id, FolderLogos, "logo_url", data)
}

func (s *UserService) setProfileImage(ctx context.Context, caller Caller, id, folder, column string, data []byte) (string, error) {
	if err := Authorize(caller, ActionEditProfile, id).Err(); err != nil {
		return "", err
	}
	if _, err := s.repo.FindCaller(ctx, id); err != nil {
		return "", storeErr(s.log, "user.set_image", err, "Perfil não encontrado.")
	}
	u, err := s.uploads.UploadImage(ctx, caller, folder, data)
	if err != nil {
		return "", err
	}
	if err = s.repo.UpdateFields(ctx, id, map[string]any{column: u}); err != nil {
		return "", storeErr(s.log, "user.set_image", err, "Perfil não encontrado.")
	}
	return u, nil
}

// SetUserStatus activates or deactivates an account. Deactivation also ends
// the account's session.
func (s *UserService) SetUserStatus(ctx context.Context, caller Caller, id string, status model.UserStatus) error {
	if err := Authorize(caller, ActionManageUsers, "").Err(); err != nil {
		return err
	}
	if !status.Valid() {
		return invalid("Estado inválido.")
	}
	if id == caller.ID && status == model.UserInativo {
		return invalid("Não pode desativar a sua própria conta.")
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]any{"status": status}); err != nil {
		return storeErr(s.log, "user.set_status", err, "Utilizador não encontrado.")
	}
	if status == model.UserInativo {
		if err := s.sessions.DeleteUserToken(ctx, id); err != nil {
			s.log.Warn("drop session of deactivated user failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	s.log.Info("user status changed", zap.String("user_id", id), zap.String("status", string(status)), zap.String("actor", caller.ID))
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, caller Caller, f mysql.UserFilter) ([]model.User, error) {
	if err := Authorize(caller, ActionManageUsers, "").Err(); err != nil {
		return nil, err
	}
	if f.Role != "" && !f.Role.Valid() {
		return nil, invalid("Perfil inválido.")
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("Estado inválido.")
	}
	f.Offset = max(f.Offset, 0)
	f.Limit = clampLimit(f.Limit, 50, 100)
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, storeErr(s.log, "user.list", err, "")
	}
	return list, nil
}
