package auth

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServico2FA_GerarSegredo(t *testing.T) {
	s := NewServico2FA("Petinova")

	segredo, url, err := s.GerarSegredo("marina@clinica.com")
	require.NoError(t, err)
	assert.NotEmpty(t, segredo)
	assert.Contains(t, url, "otpauth://totp/")
	assert.Contains(t, url, "Petinova")
}

func TestServico2FA_ValidarTOTP(t *testing.T) {
	s := NewServico2FA("Petinova")
	segredo, _, err := s.GerarSegredo("marina@clinica.com")
	require.NoError(t, err)

	codigo, err := totp.GenerateCode(segredo, time.Now().UTC())
	require.NoError(t, err)

	assert.True(t, s.ValidarTOTP(segredo, codigo))
	assert.False(t, s.ValidarTOTP(segredo, "000000"))
	assert.False(t, s.ValidarTOTP(segredo, "código"))
}

func TestServico2FA_ToleranciaDeJanela(t *testing.T) {
	s := NewServico2FA("Petinova")
	segredo, _, err := s.GerarSegredo("marina@clinica.com")
	require.NoError(t, err)

	// código da janela anterior continua valendo (skew 1)
	codigo, err := totp.GenerateCode(segredo, time.Now().UTC().Add(-30*time.Second))
	require.NoError(t, err)
	assert.True(t, s.ValidarTOTP(segredo, codigo))

	// duas janelas atrás, não
	antigo, err := totp.GenerateCode(segredo, time.Now().UTC().Add(-90*time.Second))
	require.NoError(t, err)
	assert.False(t, s.ValidarTOTP(segredo, antigo))
}

func TestGerarCodigosBackup(t *testing.T) {
	codigos, hashes, err := GerarCodigosBackup()
	require.NoError(t, err)
	require.Len(t, codigos, QtdCodigosBackup)
	require.Len(t, hashes, QtdCodigosBackup)

	vistos := map[string]bool{}
	for i, c := range codigos {
		assert.Regexp(t, `^\d{4}-\d{4}$`, c)
		assert.Equal(t, HashCodigoBackup(c), hashes[i])
		assert.False(t, vistos[c], "código repetido: %s", c)
		vistos[c] = true
	}
}
