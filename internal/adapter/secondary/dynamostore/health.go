package dynamostore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// TableDescriber is the subset of the DynamoDB client the health check needs.
type TableDescriber interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// HealthCheck implements secondary.HealthChecker for the record table.
type HealthCheck struct {
	api   TableDescriber
	table string
}

// NewHealthCheck creates a health check that describes table.
func NewHealthCheck(api TableDescriber, table string) secondary.HealthChecker {
	return &HealthCheck{api: api, table: table}
}

// Name returns "dynamodb".
func (h *HealthCheck) Name() string {
	return "dynamodb"
}

// Check describes the record table.
func (h *HealthCheck) Check(ctx context.Context) error {
	if _, err := h.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(h.table),
	}); err != nil {
		return fmt.Errorf("describing table %s: %w", h.table, err)
	}
	return nil
}
