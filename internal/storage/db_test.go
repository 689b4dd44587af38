package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestLogLevelFor(t *testing.T) {
	tests := []struct {
		environment string
		want        logger.LogLevel
	}{
		{"development", logger.Info},
		{"production", logger.Silent},
		{"test", logger.Silent},
		{"", logger.Silent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LogLevelFor(tt.environment), "environment %q", tt.environment)
	}
}
