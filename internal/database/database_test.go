package database

import (
	"context"
	"testing"

	"FoodAdvisor_V0.1/internal/config"
	"FoodAdvisor_V0.1/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService_InvalidDSN(t *testing.T) {
	_, err := NewService(context.Background(), config.DatabaseConfig{
		Host: "db", Port: "not-a-port", Database: "foods",
	})
	assert.ErrorContains(t, err, "unable to create connection pool")
}

func TestService_IsDatasetSource(t *testing.T) {
	svc, err := NewService(context.Background(), config.DatabaseConfig{
		Host: "127.0.0.1", Port: "1", Database: "foods", Username: "app",
	})
	require.NoError(t, err)
	defer svc.Close()

	var _ dataset.Source = svc

	health := svc.Health(context.Background())
	assert.Equal(t, "down", health["status"])
}
