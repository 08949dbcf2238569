package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type credenciais struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// recuperarCredenciais resolve usuário/senha do banco: primeiro pelo
// ambiente (DB_USERNAME/DB_PASSWORD), depois pelo AWS Secrets Manager.
func recuperarCredenciais(secretID string) (string, string, error) {
	usuario := os.Getenv("DB_USERNAME")
	senha := os.Getenv("DB_PASSWORD")
	if usuario != "" && senha != "" {
		return usuario, senha, nil
	}
	if secretID == "" {
		return "", "", fmt.Errorf("credenciais do banco ausentes: defina DB_USERNAME/DB_PASSWORD ou DB_SECRET_ID")
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		return "", "", fmt.Errorf("aws config: %w", err)
	}
	cliente := secretsmanager.NewFromConfig(cfg)

	saida, err := cliente.GetSecretValue(context.TODO(), &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return "", "", fmt.Errorf("secrets manager: %w", err)
	}

	var segredo credenciais
	if err := json.Unmarshal([]byte(aws.ToString(saida.SecretString)), &segredo); err != nil {
		return "", "", fmt.Errorf("secret inválido: %w", err)
	}
	return segredo.Username, segredo.Password, nil
}
