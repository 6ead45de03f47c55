package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hearthstone-labs/crm/internal/auth"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("CRM_AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("CRM_AUTH_JWT_ISSUER", "crm-cli")

	out, err := execute(t, "token", "--subject", "alice", "--role", "agent,admin", "--ttl", "5m")
	require.NoError(t, err)

	token := strings.TrimSpace(out)
	authn, err := auth.NewHMACAuthenticator(auth.HMACOptions{Secret: []byte("cli-secret"), Issuer: "crm-cli"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	p, err := authn.Authenticate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Subject)
	assert.Equal(t, []string{"agent", "admin"}, p.Roles)
}

func TestTokenCommand_RequiresJWTMode(t *testing.T) {
	t.Setenv("CRM_AUTH_MODE", "dev")

	_, err := execute(t, "token", "--subject", "alice")
	assert.ErrorContains(t, err, "jwt")
}

func TestConfigFileAndDBCommands(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "crm.db")
	configPath := filepath.Join(dir, "crmapi.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"database_url: "+dbPath+"\nauth:\n  mode: dev\n"), 0o600))

	out, err := execute(t, "--config", configPath, "db", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, `"msg":"applied migration group"`)
	assert.Equal(t, dbPath, cfg.DatabaseURL)
	assert.Equal(t, "dev", cfg.Auth.Mode)

	out, err = execute(t, "--config", configPath, "db", "status")
	require.NoError(t, err)
	assert.Contains(t, out, `"msg":"applied"`)
	assert.Contains(t, out, "create_crm_tables")

	_, err = execute(t, "--config", configPath, "db", "rollback")
	require.NoError(t, err)
}

func TestFlagsOverrideConfig(t *testing.T) {
	t.Setenv("CRM_AUTH_MODE", "dev")
	t.Setenv("CRM_SERVER_ADDR", "127.0.0.1:9000")

	_, err := execute(t, "--server-addr", "127.0.0.1:9999", "--db-url", ":memory:", "db", "migrate")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.ServerAddr)
	assert.Equal(t, ":memory:", cfg.DatabaseURL)
}

func TestMissingConfigFileIsAnError(t *testing.T) {
	t.Setenv("CRM_AUTH_MODE", "dev")

	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "db", "status")
	assert.Error(t, err)
}
