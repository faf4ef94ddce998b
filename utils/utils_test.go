package utils

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, 1.235, FormatFloat(1.23456, 3))
	assert.Equal(t, 1.2, FormatFloat(1.23456, 1))
	assert.Equal(t, 56.78, FormatFloat(56.78223274695534, 2))
	assert.True(t, math.IsNaN(FormatFloat(math.NaN(), 3)))
	assert.True(t, math.IsInf(FormatFloat(math.Inf(1), 3), 1))
}

func TestFloatString(t *testing.T) {
	assert.Equal(t, "18.289", FloatString(18.288999999999998, 3))
	assert.Equal(t, "5", FloatString(5, 3))
	assert.Equal(t, "NaN", FloatString(math.NaN(), 3))
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(true))
	assert.NotNil(t, GetLogger(context.Background()))
	assert.NoError(t, InitLogger(false))
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	zap.ReplaceGlobals(zap.New(core))
	defer func() { _ = InitLogger(false) }()

	ctx := WithFields(context.Background(), zap.String("command", "welllog describe"))
	GetLogger(ctx).Info("loaded")
	GetLogger(context.Background()).Info("bare")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "welllog describe", entries[0].ContextMap()["command"])
	assert.Empty(t, entries[1].ContextMap())
}
