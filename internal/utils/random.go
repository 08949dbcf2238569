package utils

import (
	"crypto/rand"
	"math/big"
)

// gerarAleatoria monta uma cadeia alfanumérica com aleatoriedade criptográfica.
func gerarAleatoria(tamanho int) (string, error) {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	resultado := make([]byte, tamanho)
	for i := 0; i < tamanho; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", err
		}
		resultado[i] = chars[num.Int64()]
	}
	return string(resultado), nil
}
