package dynamo

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce-verify/internal/config"
)

func TestNewClient_LocalStackEndpointAndNoRetries(t *testing.T) {
	c, err := NewClient(context.Background(), &config.Config{
		AWSRegion:      "us-east-1",
		AWSEndpointURL: "http://localhost:4566",
		AWSAccessKeyID: "test",
		AWSSecretKey:   "test",
	})
	require.NoError(t, err)

	opts := c.Options()
	assert.Equal(t, "http://localhost:4566", aws.ToString(opts.BaseEndpoint))
	assert.Equal(t, 1, opts.RetryMaxAttempts)
}
