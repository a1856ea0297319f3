package secrets

import (
	"context"
	"fmt"
	"os"
	"sync"

	gcpsecrets "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	gax "github.com/googleapis/gax-go/v2"

	"github.com/bookshelfd/bookshelf/internal/log"
)

// Supported cloud secret manager kinds.
const (
	CloudAWS = "aws"
	CloudGCP = "gcp"
)

// awsSecretsAPI is the slice of the AWS Secrets Manager client we use.
type awsSecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// gcpSecretsAPI is the slice of the GCP Secret Manager client we use.
type gcpSecretsAPI interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest,
		opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// Client constructors as package vars so tests can inject fakes without
// network access.
var (
	newAWSClient = func(ctx context.Context) (awsSecretsAPI, error) {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		return secretsmanager.NewFromConfig(cfg), nil
	}

	newGCPClient = func(ctx context.Context) (gcpSecretsAPI, error) {
		return gcpsecrets.NewClient(ctx)
	}
)

// CloudProvider retrieves secrets from a cloud secret manager. The client
// is constructed lazily on first lookup; construction failures (missing
// credentials, unreachable endpoint) are logged and reported as absent,
// never raised.
type CloudProvider struct {
	kind   string
	logger log.Logger

	mu  sync.Mutex
	aws awsSecretsAPI
	gcp gcpSecretsAPI
}

// NewCloudProvider creates a provider for the given kind (CloudAWS or
// CloudGCP). Unknown kinds are tolerated and resolve every key to absent.
func NewCloudProvider(kind string, logger log.Logger) *CloudProvider {
	if logger == nil {
		logger = log.NewNop()
	}
	return &CloudProvider{kind: kind, logger: logger}
}

// Name implements Provider.
func (p *CloudProvider) Name() string { return "cloud:" + p.kind }

// GetSecret implements Provider.
func (p *CloudProvider) GetSecret(ctx context.Context, key string) (string, bool) {
	switch p.kind {
	case CloudAWS:
		return p.getAWS(ctx, key)
	case CloudGCP:
		return p.getGCP(ctx, key)
	default:
		p.logger.Warn("unknown cloud secret provider kind", "kind", p.kind)
		return "", false
	}
}

func (p *CloudProvider) getAWS(ctx context.Context, key string) (string, bool) {
	p.mu.Lock()
	if p.aws == nil {
		client, err := newAWSClient(ctx)
		if err != nil {
			p.mu.Unlock()
			p.logger.Warn("cannot create AWS Secrets Manager client", "error", err)
			return "", false
		}
		p.aws = client
	}
	client := p.aws
	p.mu.Unlock()

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(key),
	})
	if err != nil {
		p.logger.Warn("failed to retrieve AWS secret", "key", key, "error", err)
		return "", false
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", false
	}
	return *out.SecretString, true
}

func (p *CloudProvider) getGCP(ctx context.Context, key string) (string, bool) {
	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		p.logger.Warn("GCP_PROJECT_ID not set, cannot use GCP Secret Manager")
		return "", false
	}

	p.mu.Lock()
	if p.gcp == nil {
		client, err := newGCPClient(ctx)
		if err != nil {
			p.mu.Unlock()
			p.logger.Warn("cannot create GCP Secret Manager client", "error", err)
			return "", false
		}
		p.gcp = client
	}
	client := p.gcp
	p.mu.Unlock()

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, key)
	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		p.logger.Warn("failed to retrieve GCP secret", "key", key, "error", err)
		return "", false
	}
	if resp.GetPayload() == nil || len(resp.GetPayload().GetData()) == 0 {
		return "", false
	}
	return string(resp.GetPayload().GetData()), true
}
