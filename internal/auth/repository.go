package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"gorm.io/gorm"
)

// RefreshTokens abstrai a persistência dos refresh tokens.
type RefreshTokens interface {
	Criar(rt *RefreshToken) error
	BuscarPorHash(hash string) (*RefreshToken, error)
	// RevogarSeAtivo marca o token como revogado em um único UPDATE
	// condicional ("revoked_at IS NULL"). Devolve false quando o token
	// já estava revogado ou não existe; o perdedor de um refresh
	// concorrente recebe a falha em vez de um par duplicado.
	RevogarSeAtivo(hash string) (bool, error)
	RevogarTodosDoUsuario(usuarioID uint) error
}

type refreshRepository struct {
	db *gorm.DB
}

func NewRefreshRepository(db *gorm.DB) RefreshTokens {
	return &refreshRepository{db: db}
}

func (r *refreshRepository) Criar(rt *RefreshToken) error {
	return r.db.Create(rt).Error
}

func (r *refreshRepository) BuscarPorHash(hash string) (*RefreshToken, error) {
	var rt RefreshToken
	if err := r.db.Where("hash = ?", hash).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *refreshRepository) RevogarSeAtivo(hash string) (bool, error) {
	agora := time.Now()
	res := r.db.Model(&RefreshToken{}).
		Where("hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", &agora)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *refreshRepository) RevogarTodosDoUsuario(usuarioID uint) error {
	agora := time.Now()
	return r.db.Model(&RefreshToken{}).
		Where("usuario_id = ? AND revoked_at IS NULL", usuarioID).
		Update("revoked_at", &agora).Error
}

// --- Helpers de geração/derivação do valor opaco ---

// GerarRefreshRaw gera o valor aleatório entregue ao cliente no cookie.
func GerarRefreshRaw() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashRefreshRaw deriva o valor de busca armazenado no banco.
func HashRefreshRaw(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}
