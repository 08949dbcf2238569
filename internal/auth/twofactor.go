package auth

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Servico2FA gera segredos e valida códigos TOTP (RFC 6238).
// Parâmetros padrão: período 30s, 6 dígitos, SHA1, tolerância de ±1 janela.
type Servico2FA struct {
	emissor string
}

func NewServico2FA(emissor string) *Servico2FA {
	if emissor == "" {
		emissor = "Petinova"
	}
	return &Servico2FA{emissor: emissor}
}

// GerarSegredo cria um segredo novo para o enroll de 2FA e devolve o
// segredo em base32 junto com a URL otpauth:// para o QR code.
func (s *Servico2FA) GerarSegredo(email string) (segredo, url string, err error) {
	chave, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.emissor,
		AccountName: email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
		SecretSize:  20,
	})
	if err != nil {
		return "", "", err
	}
	return chave.Secret(), chave.URL(), nil
}

// ValidarTOTP confere o código contra o segredo com tolerância de uma
// janela de 30s para cada lado (relógio do celular atrasado/adiantado).
func (s *Servico2FA) ValidarTOTP(segredo, codigo string) bool {
	ok, err := totp.ValidateCustom(codigo, segredo, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
