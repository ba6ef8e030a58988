package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enterprise/strength-service/internal/auth"
	"github.com/enterprise/strength-service/internal/strength"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&stderr)
	err := root.Execute()
	return out.String(), err
}

func TestEvaluateText(t *testing.T) {
	out, err := run(t, "", "evaluate", "aaaaaaaa")
	require.NoError(t, err)

	assert.Contains(t, out, "Score: 1/4 [#---] Very Weak")
	assert.Contains(t, out, "Valid: false")
	assert.Contains(t, out, strength.MsgRepeat)
}

func TestEvaluateJSONFromStdin(t *testing.T) {
	out, err := run(t, "Secure1!\n", "evaluate", "--json")
	require.NoError(t, err)

	var got strength.Assessment
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 4, got.Score)
	assert.True(t, got.IsValid)
	assert.Equal(t, strength.LabelStrong, got.Label)
	assert.Empty(t, got.Feedback)
}

func TestEvaluateEmptyStdin(t *testing.T) {
	_, err := run(t, "", "evaluate")
	assert.ErrorIs(t, err, errNoCandidate)

	// a blank line is an empty candidate, not a missing one
	out, err := run(t, "\n", "evaluate")
	require.NoError(t, err)
	assert.Contains(t, out, "Score: 0/4")
}

func TestScale(t *testing.T) {
	out, err := run(t, "", "scale")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], strength.ColorRed)
	assert.Contains(t, lines[4], strength.LabelStrong)
}

func TestToken(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("JWT_ISSUER", "strength-service")

	subject := "6f1c2c1e-6a54-4d0e-9a4c-0c1f1f3b9d11"
	out, err := run(t, "", "token", "--subject", subject, "--role", auth.RoleAdmin)
	require.NoError(t, err)

	manager := auth.NewJWTManager("cli-test-secret", "strength-service", time.Hour)
	claims, err := manager.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, subject, claims.OperatorID.String())
	assert.Equal(t, auth.RoleAdmin, claims.Role)

	_, err = run(t, "", "token", "--role", "root")
	assert.Error(t, err)

	_, err = run(t, "", "token", "--subject", "not-a-uuid")
	assert.Error(t, err)
}
