package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRootCommand_HashesEveryKey(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs([]string{"--cost", "4", "first-key", "second-key"})

	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(lines[0]), []byte("first-key")))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(lines[1]), []byte("second-key")))
}

func TestRootCommand_RequiresKey(t *testing.T) {
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	assert.Error(t, cmd.Execute())
}

func TestHashKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		cost    int
		wantErr bool
	}{
		{"valid", "master", bcrypt.MinCost, false},
		{"empty key", "", bcrypt.MinCost, true},
		{"cost too low", "master", bcrypt.MinCost - 1, true},
		{"cost too high", "master", bcrypt.MaxCost + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hashKey(tt.key, tt.cost)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			assert.Equal(t, tt.cost, cost)
		})
	}
}
