// Package awsauth builds the AWS SDK configuration shared by both backend
// clients from a selected environment.
package awsauth

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/owlback/registrar/internal/config"
)

// Load resolves AWS credentials and region for env. Static credentials from
// the environment config take precedence over the default chain; a named
// profile is honored otherwise.
func Load(ctx context.Context, env *config.Environment) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(env.Region),
	}
	if env.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(env.Profile))
	}
	if env.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(env.AccessKey, env.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}
