package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/freshsave/pkg/auth"
	"github.com/tair/freshsave/pkg/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return -1
}

func TestResolveOfflineHit(t *testing.T) {
	out, err := run(t, "resolve", "--offline", "5000112637922")
	require.NoError(t, err)

	var product map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &product))
	assert.Equal(t, "5000112637922", product["barcode"])
	assert.Equal(t, "Coca-Cola", product["brand"])
}

func TestResolveExitCodes(t *testing.T) {
	_, err := run(t, "resolve", "--offline", "0000000000000")
	assert.Equal(t, exitNotFound, exitCode(err))

	_, err = run(t, "resolve", "--offline", "   ")
	assert.Equal(t, exitInvalid, exitCode(err))
}

func TestResolveFallsThroughToOpenFoodFacts(t *testing.T) {
	catalog := httptest.NewServer(http.NotFoundHandler())
	defer catalog.Close()
	off := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/3017620422003.json") {
			w.Write([]byte(`{"status":0}`))
			return
		}
		w.Write([]byte(`{"status":1,"product":{"product_name":"Nutella","brands":"Ferrero"}}`))
	}))
	defer off.Close()

	out, err := run(t, "resolve", "--catalog", catalog.URL, "--off", off.URL, "3017620422003")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Nutella"`)
	assert.Contains(t, out, `"storeId": "external"`)

	_, err = run(t, "resolve", "--catalog", catalog.URL, "--off", off.URL, "7622210449283")
	assert.Equal(t, exitNotFound, exitCode(err))
}

func TestTokenIsAcceptedByServices(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENVIRONMENT", "development")

	out, err := run(t, "token", "--user", "admin-1", "--role", auth.RoleStoreAdmin, "--store", "store-1")
	require.NoError(t, err)

	claims, err := auth.NewTokenManager(config.DevJWTSecret, 0).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.Equal(t, "store-1", claims.StoreID)
	assert.True(t, claims.IsStoreAdmin())
}

func TestTokenRejectsAdminWithoutStore(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	_, err := run(t, "token", "--user", "admin-1", "--role", auth.RoleStoreAdmin)
	assert.Equal(t, exitInvalid, exitCode(err))

	_, err = run(t, "token")
	assert.Error(t, err)
}
