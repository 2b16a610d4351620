package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/hashicorp/vault/api"
)

// Secret keys looked up in the configured secret store
const (
	SecretJWT        = "jwt_secret"
	SecretGoogleAI   = "google_ai_api_key"
	SecretOpenAI     = "openai_api_key"
	SecretAnthropic  = "anthropic_api_key"
	SecretVirusTotal = "virustotal_api_key"
	SecretAbuseIPDB  = "abuseipdb_api_key"
	SecretGreyNoise  = "greynoise_api_key"
)

// SecretManager retrieves a named secret
type SecretManager interface {
	GetSecret(key string) (string, error)
}

// EnvSecretManager reads FORENSICS_<KEY> environment variables
type EnvSecretManager struct{}

func (e *EnvSecretManager) GetSecret(key string) (string, error) {
	envKey := "FORENSICS_" + strings.ToUpper(key)
	value := os.Getenv(envKey)
	if value == "" {
		return "", fmt.Errorf("environment variable %s not set", envKey)
	}
	return value, nil
}

// vaultReader is the part of the Vault logical client we use
type vaultReader interface {
	Read(path string) (*api.Secret, error)
}

// VaultSecretManager reads secrets from one HashiCorp Vault path
type VaultSecretManager struct {
	path   string
	reader vaultReader
}

// NewVaultSecretManager creates a Vault-backed secret manager
func NewVaultSecretManager(cfg *Config) (*VaultSecretManager, error) {
	client, err := api.NewClient(&api.Config{
		Address: cfg.Secrets.Vault.Address,
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	token := cfg.Secrets.Vault.Token
	if token == "" {
		token = os.Getenv("VAULT_TOKEN")
	}
	if token != "" {
		client.SetToken(token)
	}

	return &VaultSecretManager{path: cfg.Secrets.Vault.Path, reader: client.Logical()}, nil
}

func (v *VaultSecretManager) GetSecret(key string) (string, error) {
	secret, err := v.reader.Read(v.path)
	if err != nil {
		return "", fmt.Errorf("failed to read from Vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("secret not found at path %s", v.path)
	}

	// KV v2 nests the payload under "data"
	data := secret.Data
	if nested, ok := data["data"].(map[string]interface{}); ok {
		data = nested
	}

	value, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key %s not found in Vault secret", key)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("secret value for key %s is not a string", key)
	}
	return str, nil
}

// secretsManagerAPI is the part of the AWS client we use
type secretsManagerAPI interface {
	GetSecretValue(input *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretManager reads a JSON object of secrets from AWS Secrets Manager
type AWSSecretManager struct {
	secretID string
	client   secretsManagerAPI
}

// NewAWSSecretManager creates an AWS Secrets Manager backed secret manager
func NewAWSSecretManager(cfg *Config) (*AWSSecretManager, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Secrets.AWS.Region)}
	if cfg.Secrets.AWS.AccessKey != "" && cfg.Secrets.AWS.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.Secrets.AWS.AccessKey, cfg.Secrets.AWS.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &AWSSecretManager{secretID: cfg.Secrets.AWS.SecretID, client: secretsmanager.New(sess)}, nil
}

func (a *AWSSecretManager) GetSecret(key string) (string, error) {
	result, err := a.client.GetSecretValue(&secretsmanager.GetSecretValueInput{
		SecretId: aws.String(a.secretID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret from AWS: %w", err)
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("AWS secret %s has no string value", a.secretID)
	}

	var secrets map[string]string
	if err := json.Unmarshal([]byte(*result.SecretString), &secrets); err != nil {
		return "", fmt.Errorf("failed to parse AWS secret JSON: %w", err)
	}
	value, ok := secrets[key]
	if !ok {
		return "", fmt.Errorf("key %s not found in AWS secret", key)
	}
	return value, nil
}

// NewSecretManager creates the secret manager named by secrets.provider
func NewSecretManager(cfg *Config) (SecretManager, error) {
	switch cfg.Secrets.Provider {
	case "", "env":
		return &EnvSecretManager{}, nil
	case "vault":
		return NewVaultSecretManager(cfg)
	case "aws":
		return NewAWSSecretManager(cfg)
	default:
		return nil, fmt.Errorf("unsupported secrets provider: %s", cfg.Secrets.Provider)
	}
}

// ApplySecrets fills empty credentials in cfg from sm. Keys missing from the
// store are left empty; the JWT secret is the only required one.
func ApplySecrets(cfg *Config, sm SecretManager) error {
	targets := []struct {
		key      string
		field    *string
		required bool
	}{
		{SecretJWT, &cfg.Auth.JWTSecret, true},
		{SecretGoogleAI, &cfg.AI.Google.APIKey, false},
		{SecretOpenAI, &cfg.AI.OpenAI.APIKey, false},
		{SecretAnthropic, &cfg.AI.Anthropic.APIKey, false},
		{SecretVirusTotal, &cfg.ThreatIntel.VirusTotal.APIKey, false},
		{SecretAbuseIPDB, &cfg.ThreatIntel.AbuseIPDB.APIKey, false},
		{SecretGreyNoise, &cfg.ThreatIntel.GreyNoise.APIKey, false},
	}

	for _, t := range targets {
		if *t.field != "" {
			continue
		}
		value, err := sm.GetSecret(t.key)
		if err != nil {
			if t.required {
				return fmt.Errorf("failed to load %s: %w", t.key, err)
			}
			continue
		}
		*t.field = value
	}
	return nil
}
