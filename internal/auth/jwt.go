package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tempo de vida padrão do access token.
const AccessTTL = 15 * time.Minute

// Claims do access token. Validade é puramente assinatura + expiração;
// nenhuma consulta ao banco acontece na verificação.
type Claims struct {
	UserID    uint   `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ClinicaID uint   `json:"clinicaId"`
	jwt.RegisteredClaims
}

// JWTManager assina e valida access tokens com segredo único do servidor.
// Construído em main e injetado nos handlers; nada de estado global.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTManager(secret string, ttl time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET não definida")
	}
	if ttl <= 0 {
		ttl = AccessTTL
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl}, nil
}

// TTL devolve a validade configurada do access token.
func (m *JWTManager) TTL() time.Duration { return m.ttl }

// GerarToken gera um JWT HS256 para a conta informada.
func (m *JWTManager) GerarToken(c *Conta) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    c.ID,
		Email:     c.Email,
		Role:      c.Role,
		ClinicaID: c.ClinicaID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidarToken valida assinatura e expiração e devolve as claims.
func (m *JWTManager) ValidarToken(raw string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	token, err := parser.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("token inválido ou expirado")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("não foi possível extrair claims")
	}
	return claims, nil
}
