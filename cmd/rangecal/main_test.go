package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rangecal/internal/config"
)

func TestRestartFields(t *testing.T) {
	prev := config.DefaultConfig()

	same := *prev
	assert.Empty(t, restartFields(prev, &same))

	next := *prev
	next.Listen = "0.0.0.0:9090"
	next.Timezone = "America/Santiago"
	next.WeekStart = "monday"
	assert.Equal(t, []string{"listen", "timezone"}, restartFields(prev, &next))
}

func TestRestartFieldsIgnoresListenFlag(t *testing.T) {
	conf := config.DefaultConfig()
	loaded := *conf
	// -listen overrides only the running copy.
	conf.Listen = "127.0.0.1:9999"

	reloaded := config.DefaultConfig()
	assert.Empty(t, restartFields(&loaded, reloaded))
	assert.Equal(t, []string{"listen"}, restartFields(conf, reloaded))
}
