package dynamostore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/config"
)

// NewClient creates a DynamoDB client from the default AWS credential chain.
// DYNAMODB_ENDPOINT points the client at a local emulator.
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*dynamodb.Client, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion(cfg.DynamoRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	})

	logger.Info("dynamodb client initialized",
		zap.String("region", cfg.DynamoRegion),
		zap.String("endpoint", cfg.DynamoEndpoint),
		zap.String("table", cfg.StoreRoot),
	)

	return client, nil
}
