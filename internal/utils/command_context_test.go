package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mockscaffold/internal/utils"
)

func TestCommandContextAccessorConfigurationFilePath(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, missing := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, missing)

	_, empty := accessor.ConfigurationFilePath(accessor.WithConfigurationFilePath(context.Background(), ""))
	require.False(testInstance, empty)

	recordedContext := accessor.WithConfigurationFilePath(context.Background(), "/srv/project/config.yaml")
	configurationFilePath, available := accessor.ConfigurationFilePath(recordedContext)
	require.True(testInstance, available)
	require.Equal(testInstance, "/srv/project/config.yaml", configurationFilePath)
}
