package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestEstimateCommand(t *testing.T) {
	out, err := run(t, "estimate", "running", "--distance", "2.75")
	require.NoError(t, err)
	require.Equal(t, "303\n", out)
}

func TestEstimateCommandRejectsIntensity(t *testing.T) {
	_, err := run(t, "estimate", "yoga", "--intensity", "max")
	require.Error(t, err)
}

func TestHashCommand(t *testing.T) {
	out, err := run(t, "hash", "s3cret", "--cost", "4")
	require.NoError(t, err)

	var hash string
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "PASSWORD_HASH="); ok {
			hash = v
		}
	}
	require.NotEmpty(t, hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}
