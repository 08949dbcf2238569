package utils

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Custo fixo do bcrypt para senhas da equipe da clínica.
const CustoBcrypt = 12

// Símbolos aceitos pela regra de força de senha.
const simbolosSenha = `!@#$%^&*()_+-=[]{};':"|,.<>/?`

// HashSenha gera um hash bcrypt para a senha informada.
func HashSenha(senha string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), CustoBcrypt)
	return string(hash), err
}

// VerificarSenha compara hash bcrypt com a senha em texto puro.
// Qualquer erro, inclusive hash malformado, conta como não conferido.
func VerificarSenha(hash, senha string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha))
	return err == nil
}

// ValidarForcaSenha aplica as regras de senha do sistema e devolve
// todas as violações de uma vez, para exibição conjunta no cadastro.
func ValidarForcaSenha(senha string) (bool, []string) {
	var erros []string

	if len(senha) < 8 {
		erros = append(erros, "a senha deve ter no mínimo 8 caracteres")
	}

	var temMaiuscula, temMinuscula, temDigito, temSimbolo bool
	for _, r := range senha {
		switch {
		case unicode.IsUpper(r):
			temMaiuscula = true
		case unicode.IsLower(r):
			temMinuscula = true
		case unicode.IsDigit(r):
			temDigito = true
		case strings.ContainsRune(simbolosSenha, r):
			temSimbolo = true
		}
	}

	if !temMaiuscula {
		erros = append(erros, "a senha deve conter ao menos uma letra maiúscula")
	}
	if !temMinuscula {
		erros = append(erros, "a senha deve conter ao menos uma letra minúscula")
	}
	if !temDigito {
		erros = append(erros, "a senha deve conter ao menos um número")
	}
	if !temSimbolo {
		erros = append(erros, "a senha deve conter ao menos um símbolo")
	}

	return len(erros) == 0, erros
}

// GerarSenhaTemporaria gera uma senha aleatória segura de 12 caracteres
// usada no fluxo de redefinição iniciado pelo administrador.
func GerarSenhaTemporaria() (string, error) {
	return gerarAleatoria(12)
}
