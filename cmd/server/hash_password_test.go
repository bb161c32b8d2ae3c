package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	passwords := []string{
		"testpassword123",
		"test@#$%^&*()",
		"тест123",
	}
	for _, password := range passwords {
		hash, err := hashPassword(password, bcrypt.MinCost)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)))
	}

	_, err := hashPassword("", bcrypt.MinCost)
	assert.Error(t, err)

	_, err = hashPassword("testpassword123", bcrypt.MaxCost+1)
	assert.Error(t, err)
}

func TestHashPasswordCommand(t *testing.T) {
	t.Parallel()

	run := func(stdin string, args ...string) string {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetArgs(append([]string{"hash-password", "--cost", "4"}, args...))
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		require.NoError(t, cmd.Execute())
		return strings.TrimSpace(out.String())
	}

	t.Run("argument", func(t *testing.T) {
		hash := run("", "secret-password")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret-password")))
		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, 4, cost)
	})

	t.Run("stdin", func(t *testing.T) {
		hash := run("from-stdin\n")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("from-stdin")))
	})
}
