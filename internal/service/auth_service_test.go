package service

import (
	"context"
	"testing"
	"time"

	"ananda/internal/config"
	"ananda/internal/dto"
	"ananda/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// fakeTokenStore cubre la interfaz tokenStore con un mapa en memoria. Los TTL
// se ignoran: los tests no dependen de expiraciones reales.
type fakeTokenStore struct {
	data map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{data: map[string]string{}}
}

func (f *fakeTokenStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.data[key] = value
	return nil
}

func (f *fakeTokenStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeTokenStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeTokenStore) Del(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: map[uuid.UUID]*model.Usuario{}}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	if u, ok := r.usuarios[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = false
	}
	return nil
}

func newAuthFixture(t *testing.T) (*authService, *stubUsuarioRepo, *fakeTokenStore) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)

	email := "vera@ananda.test"
	repo := newStubUsuarioRepo()
	require.NoError(t, repo.Create(context.Background(), &model.Usuario{
		Username:     "vera",
		Nombre:       "Vera",
		Apellido:     "Luna",
		Email:        &email,
		PasswordHash: string(hash),
		Rol:          model.RolEmpleado,
		Activo:       true,
	}))

	store := newFakeTokenStore()
	svc := &authService{
		repo: repo,
		cfg: &config.Config{
			JWTSecret:          "clave-de-test",
			JWTExpirationHours: 1,
			JWTRefreshHours:    24,
		},
		store: store,
	}
	return svc, repo, store
}

func login(t *testing.T, svc *authService) *dto.LoginResponse {
	t.Helper()
	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "vera",
		Password: "secreto123",
	})
	require.NoError(t, err)
	return resp
}

func TestLoginRechazaCredencialesInvalidas(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "vera", Password: "otra"})
	require.EqualError(t, err, "credenciales invalidas")

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nadie", Password: "secreto123"})
	require.EqualError(t, err, "credenciales invalidas")
}

func TestRefreshRotaElToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	sesion := login(t, svc)

	renovada, err := svc.Refresh(ctx, sesion.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, renovada.RefreshToken)

	// El refresh consumido queda retirado: usarlo de nuevo no emite otro par.
	_, err = svc.Refresh(ctx, sesion.RefreshToken)
	require.EqualError(t, err, "refresh token invalido o expirado")

	// El token nuevo sigue vigente.
	_, err = svc.Refresh(ctx, renovada.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutInvalidaElRefreshToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	sesion := login(t, svc)
	require.NoError(t, svc.Logout(ctx, sesion.RefreshToken))

	_, err := svc.Refresh(ctx, sesion.RefreshToken)
	require.EqualError(t, err, "refresh token invalido o expirado")
}

func TestRefreshRechazaUsuarioDesactivado(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	sesion := login(t, svc)
	require.NoError(t, repo.SoftDelete(ctx, uuid.MustParse(sesion.User.ID)))

	_, err := svc.Refresh(ctx, sesion.RefreshToken)
	require.EqualError(t, err, "usuario no encontrado o inactivo")
}

func TestResetPasswordEsDeUnSoloUso(t *testing.T) {
	svc, repo, store := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.ForgotPassword(ctx, "vera@ananda.test"))

	var token string
	for k := range store.data {
		token = k[len(resetTokenPrefix):]
	}
	require.NotEmpty(t, token, "el pedido de reset deja un token en el store")

	require.NoError(t, svc.ResetPassword(ctx, dto.ResetPasswordRequest{
		Token:    token,
		Password: "nueva-clave-9",
	}))

	user, err := repo.FindByUsername(ctx, "vera")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("nueva-clave-9")))

	err = svc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: token, Password: "otra-mas"})
	require.EqualError(t, err, "token de reset invalido o vencido")
}

func TestForgotPasswordNoRevelaEmailsInexistentes(t *testing.T) {
	svc, _, store := newAuthFixture(t)

	require.NoError(t, svc.ForgotPassword(context.Background(), "nadie@ananda.test"))
	assert.Empty(t, store.data)
}
