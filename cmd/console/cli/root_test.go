package cli

import (
	"testing"

	"github.com/spf13/viper"
)

func TestEnvOverridesNestedKeys(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("BUDBEER_AUTH_JWT_SECRET", "from-env")
	t.Setenv("BUDBEER_SERVER_PORT", "9999")

	initConfig()

	if got := viper.GetString("auth.jwt_secret"); got != "from-env" {
		t.Errorf("auth.jwt_secret = %q, want value of BUDBEER_AUTH_JWT_SECRET", got)
	}
	if got := viper.GetInt("server.port"); got != 9999 {
		t.Errorf("server.port = %d, want 9999", got)
	}
}
