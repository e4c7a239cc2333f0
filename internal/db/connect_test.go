package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect(t *testing.T) {
	s, err := Connect(WithInMemory(true))
	if err != nil {
		assert.NoError(t, err)
	}
	defer s.Close()

	assert.NotEmpty(t, s)
}

func TestConnectTest(t *testing.T) {
	s, err := Connect(WithTesting(true))
	if err != nil {
		assert.NoError(t, err)
	}
	defer s.Close()

	assert.NotEmpty(t, s)
}

func TestSchemaExists(t *testing.T) {
	s, err := Connect(WithTesting(true))
	assert.NoError(t, err)
	defer s.Close()

	var name string
	err = s.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='block_runs'`).Scan(&name)
	assert.NoError(t, err, "block_runs table should exist after Connect")
	assert.Equal(t, "block_runs", name)
}
