package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	if err := load(v, ""); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := v.GetString(constants.ViperHTTPAddrKey); got != ":5008" {
		t.Errorf("http.addr = %q", got)
	}
	if got := v.GetInt(constants.ViperExchangeMinQuotaKey); got != 50 {
		t.Errorf("exchange.min_quota = %d", got)
	}
	if got := v.GetDuration(constants.ViperClientsTimeoutKey); got != 10*time.Second {
		t.Errorf("clients.timeout = %s", got)
	}
}

func TestFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prices.yaml")
	body := []byte("store:\n  driver: sqlite\nestimate:\n  base_scaling:\n    INSTALACION DE FAENAS: m2/100\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PRICES_EXCHANGE_MIN_QUOTA", "10")

	v := viper.New()
	if err := load(v, path); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := v.GetString(constants.ViperStoreDriverKey); got != constants.StoreDriverSQLite {
		t.Errorf("store.driver = %q", got)
	}
	if got := v.GetInt(constants.ViperExchangeMinQuotaKey); got != 10 {
		t.Errorf("exchange.min_quota = %d", got)
	}
	rules := v.GetStringMapString(constants.ViperBaseScalingKey)
	if rules["instalacion de faenas"] != "m2/100" {
		t.Errorf("base_scaling = %v", rules)
	}
}
