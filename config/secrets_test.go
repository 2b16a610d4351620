package config

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSecrets map[string]string

func (m mapSecrets) GetSecret(key string) (string, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return "", errors.New("missing")
}

type fakeVault struct {
	secret *api.Secret
	err    error
	path   string
}

func (f *fakeVault) Read(path string) (*api.Secret, error) {
	f.path = path
	return f.secret, f.err
}

type fakeSecretsManager struct {
	value string
}

func (f *fakeSecretsManager) GetSecretValue(in *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
	return &secretsmanager.GetSecretValueOutput{Name: in.SecretId, SecretString: aws.String(f.value)}, nil
}

func TestEnvSecretManager_GetSecret(t *testing.T) {
	t.Setenv("FORENSICS_JWT_SECRET", "from-env")

	v, err := (&EnvSecretManager{}).GetSecret(SecretJWT)
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = (&EnvSecretManager{}).GetSecret("nope")
	assert.Error(t, err)
}

func TestVaultSecretManager_KVv1AndKVv2(t *testing.T) {
	v1 := &fakeVault{secret: &api.Secret{Data: map[string]interface{}{"jwt_secret": "v1-secret"}}}
	sm := &VaultSecretManager{path: "secret/forensics", reader: v1}
	got, err := sm.GetSecret(SecretJWT)
	require.NoError(t, err)
	assert.Equal(t, "v1-secret", got)
	assert.Equal(t, "secret/forensics", v1.path)

	v2 := &fakeVault{secret: &api.Secret{Data: map[string]interface{}{
		"data": map[string]interface{}{"openai_api_key": "sk-vault"},
	}}}
	sm = &VaultSecretManager{path: "secret/data/forensics", reader: v2}
	got, err = sm.GetSecret(SecretOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "sk-vault", got)

	_, err = sm.GetSecret(SecretAnthropic)
	assert.Error(t, err)
}

func TestVaultSecretManager_MissingPath(t *testing.T) {
	sm := &VaultSecretManager{path: "secret/none", reader: &fakeVault{}}
	_, err := sm.GetSecret(SecretJWT)
	assert.Error(t, err)
}

func TestAWSSecretManager_GetSecret(t *testing.T) {
	sm := &AWSSecretManager{
		secretID: "forensics/secrets",
		client:   &fakeSecretsManager{value: `{"jwt_secret":"aws-secret","virustotal_api_key":"vt"}`},
	}

	got, err := sm.GetSecret(SecretVirusTotal)
	require.NoError(t, err)
	assert.Equal(t, "vt", got)

	_, err = sm.GetSecret(SecretGreyNoise)
	assert.Error(t, err)
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{}
	cfg.AI.OpenAI.APIKey = "already-set"

	err := ApplySecrets(cfg, mapSecrets{
		SecretJWT:        "jwt-from-store-0123456789-0123456789",
		SecretOpenAI:     "ignored",
		SecretVirusTotal: "vt-key",
	})
	require.NoError(t, err)

	assert.Equal(t, "jwt-from-store-0123456789-0123456789", cfg.Auth.JWTSecret)
	assert.Equal(t, "already-set", cfg.AI.OpenAI.APIKey)
	assert.Equal(t, "vt-key", cfg.ThreatIntel.VirusTotal.APIKey)
	assert.Empty(t, cfg.ThreatIntel.GreyNoise.APIKey)
}

func TestApplySecrets_RequiresJWT(t *testing.T) {
	err := ApplySecrets(&Config{}, mapSecrets{})
	assert.Error(t, err)
}

func TestNewSecretManager(t *testing.T) {
	cfg := &Config{}
	sm, err := NewSecretManager(cfg)
	require.NoError(t, err)
	assert.IsType(t, &EnvSecretManager{}, sm)

	cfg.Secrets.Provider = "keychain"
	_, err = NewSecretManager(cfg)
	assert.Error(t, err)
}
