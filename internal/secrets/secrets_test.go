package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	gax "github.com/googleapis/gax-go/v2"

	"github.com/bookshelfd/bookshelf/internal/log"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("BOOKSHELF_TEST_SECRET", "from-env")

	p := EnvProvider{}
	v, ok := p.GetSecret(context.Background(), "BOOKSHELF_TEST_SECRET")
	if !ok || v != "from-env" {
		t.Fatalf("GetSecret = (%q, %v), want (\"from-env\", true)", v, ok)
	}

	if _, ok := p.GetSecret(context.Background(), "BOOKSHELF_TEST_SECRET_UNSET"); ok {
		t.Error("unset variable should be absent")
	}

	t.Setenv("BOOKSHELF_TEST_SECRET_EMPTY", "")
	if _, ok := p.GetSecret(context.Background(), "BOOKSHELF_TEST_SECRET_EMPTY"); ok {
		t.Error("empty variable should be absent")
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "API_KEY"), []byte("  value-with-padding \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "EMPTY"), []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "SUBDIR"), 0o755); err != nil {
		t.Fatal(err)
	}

	p := NewFileProvider(dir, log.NewNop())

	tests := []struct {
		name   string
		key    string
		want   string
		wantOK bool
	}{
		{"present and trimmed", "API_KEY", "value-with-padding", true},
		{"missing file", "MISSING", "", false},
		{"whitespace-only file", "EMPTY", "", false},
		{"directory is not a secret", "SUBDIR", "", false},
		{"empty key", "", "", false},
		{"key with separator", "../etc/passwd", "", false},
		{"key with backslash", `a\b`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := p.GetSecret(context.Background(), tt.key)
			if v != tt.want || ok != tt.wantOK {
				t.Errorf("GetSecret(%q) = (%q, %v), want (%q, %v)", tt.key, v, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFileProvider_DefaultDir(t *testing.T) {
	p := NewFileProvider("", log.NewNop())
	if p.dir != DefaultSecretsDir {
		t.Errorf("dir = %q, want %q", p.dir, DefaultSecretsDir)
	}
}

type fakeAWSClient struct {
	values map[string]string
	err    error
}

func (f *fakeAWSClient) GetSecretValue(_ context.Context, params *secretsmanager.GetSecretValueInput,
	_ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[aws.ToString(params.SecretId)]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(v)}, nil
}

type fakeGCPClient struct {
	values map[string]string
	err    error
}

func (f *fakeGCPClient) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest,
	_ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[req.GetName()]
	if !ok {
		return nil, errors.New("NOT_FOUND")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(v)},
	}, nil
}

func withAWSClient(t *testing.T, c awsSecretsAPI, err error) {
	t.Helper()
	orig := newAWSClient
	newAWSClient = func(context.Context) (awsSecretsAPI, error) { return c, err }
	t.Cleanup(func() { newAWSClient = orig })
}

func withGCPClient(t *testing.T, c gcpSecretsAPI, err error) {
	t.Helper()
	orig := newGCPClient
	newGCPClient = func(context.Context) (gcpSecretsAPI, error) { return c, err }
	t.Cleanup(func() { newGCPClient = orig })
}

func TestCloudProvider_AWS(t *testing.T) {
	withAWSClient(t, &fakeAWSClient{values: map[string]string{"SECRET_KEY": "aws-value"}}, nil)

	p := NewCloudProvider(CloudAWS, log.NewNop())

	v, ok := p.GetSecret(context.Background(), "SECRET_KEY")
	if !ok || v != "aws-value" {
		t.Fatalf("GetSecret = (%q, %v), want (\"aws-value\", true)", v, ok)
	}

	if _, ok := p.GetSecret(context.Background(), "MISSING"); ok {
		t.Error("missing secret should be absent, not an error")
	}
}

func TestCloudProvider_AWSClientFailure(t *testing.T) {
	withAWSClient(t, nil, errors.New("no credentials"))

	p := NewCloudProvider(CloudAWS, log.NewNop())
	if _, ok := p.GetSecret(context.Background(), "SECRET_KEY"); ok {
		t.Error("client construction failure should resolve to absent")
	}
}

func TestCloudProvider_GCP(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "demo-project")
	withGCPClient(t, &fakeGCPClient{values: map[string]string{
		"projects/demo-project/secrets/SECRET_KEY/versions/latest": "gcp-value",
	}}, nil)

	p := NewCloudProvider(CloudGCP, log.NewNop())

	v, ok := p.GetSecret(context.Background(), "SECRET_KEY")
	if !ok || v != "gcp-value" {
		t.Fatalf("GetSecret = (%q, %v), want (\"gcp-value\", true)", v, ok)
	}

	if _, ok := p.GetSecret(context.Background(), "MISSING"); ok {
		t.Error("missing secret should be absent")
	}
}

func TestCloudProvider_GCPWithoutProject(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "")
	withGCPClient(t, &fakeGCPClient{}, nil)

	p := NewCloudProvider(CloudGCP, log.NewNop())
	if _, ok := p.GetSecret(context.Background(), "SECRET_KEY"); ok {
		t.Error("missing GCP_PROJECT_ID should resolve to absent")
	}
}

func TestCloudProvider_UnknownKind(t *testing.T) {
	p := NewCloudProvider("azure", log.NewNop())
	if _, ok := p.GetSecret(context.Background(), "SECRET_KEY"); ok {
		t.Error("unknown kind should resolve every key to absent")
	}
}
