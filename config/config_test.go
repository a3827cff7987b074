package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFilesPrecedence(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	yamlPath := filepath.Join(dir, "app.yaml")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port":"9000","menu_cache_ttl":"1m","cart_ttl_days":7}`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("app_port: \"9100\"\norder_reduce_stock: false\n"), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("APP_PORT=9200\n# comment\nORDER_BREWING_ALIAS=none\n"), 0o644))

	got, err := readSources(jsonPath, yamlPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, "9200", got["APP_PORT"])
	assert.Equal(t, "false", got["ORDER_REDUCE_STOCK"])
	assert.Equal(t, "7", got["CART_TTL_DAYS"])
	assert.Equal(t, "1m", got["MENU_CACHE_TTL"])
	assert.Equal(t, "none", got["ORDER_BREWING_ALIAS"])
}

func TestLoadFromFilesMissingFilesKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	got, err := readSources(
		filepath.Join(dir, "nope.json"),
		filepath.Join(dir, "nope.yaml"),
		filepath.Join(dir, ".env.missing"),
	)
	require.NoError(t, err)

	assert.Equal(t, defaultAppPort, got["APP_PORT"])
	assert.Equal(t, "pending", got["ORDER_BREWING_ALIAS"])
}

func TestTypedGetters(t *testing.T) {
	Set("ORDER_REDUCE_STOCK", "false")
	Set("MENU_CACHE_TTL", "30s")
	Set("CART_TTL_DAYS", "2")
	Set("ORDER_BREWING_ALIAS", "off")
	t.Cleanup(func() {
		Set("ORDER_REDUCE_STOCK", "true")
		Set("MENU_CACHE_TTL", "")
		Set("CART_TTL_DAYS", "")
		Set("ORDER_BREWING_ALIAS", "pending")
	})

	assert.False(t, OrderReduceStock())
	assert.Equal(t, 30*time.Second, MenuCacheTTL())
	assert.Equal(t, 48*time.Hour, CartTTL())
	assert.Equal(t, "none", OrderBrewingAlias())
	assert.Equal(t, 5, Int("NOT_A_KEY", 5))
}

func TestNestedSectionsAndListsFlatten(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
mail:
  host: smtp.cafe.test
  port: 2525
cors:
  allowed_origins:
    - https://admin.cafe.test
    - https://kiosk.cafe.test
`), 0o644))

	got, err := readSources("", yamlPath, "")
	require.NoError(t, err)
	assert.Equal(t, "smtp.cafe.test", got["MAIL_HOST"])
	assert.Equal(t, "2525", got["MAIL_PORT"])
	assert.Equal(t, "https://admin.cafe.test,https://kiosk.cafe.test", got["CORS_ALLOWED_ORIGINS"])
}

func TestMalformedFileFailsLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port":`), 0o644))

	_, err := readSources(jsonPath, "", "")
	assert.ErrorContains(t, err, "app.json")
}

func TestList(t *testing.T) {
	Set("TEST_LIST", " a, ,b ,c")
	t.Cleanup(func() { Set("TEST_LIST", "") })

	assert.Equal(t, []string{"a", "b", "c"}, List("TEST_LIST", nil))
	assert.Equal(t, []string{"*"}, List("TEST_LIST_UNSET", []string{"*"}))
}

func TestValidateOnlyBindsProduction(t *testing.T) {
	t.Cleanup(func() {
		Set("APP_ENV", "")
		Set("JWT_SECRET", "")
		Set("APP_KEY", "")
	})

	Set("APP_ENV", "local")
	assert.NoError(t, Validate())

	Set("APP_ENV", "production")
	err := Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "APP_KEY")

	Set("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	Set("APP_KEY", "base64:c2VjcmV0")
	assert.NoError(t, Validate())
}

func TestDatabaseDSNFollowsDriver(t *testing.T) {
	t.Cleanup(func() { Set("DB_DRIVER", "") })

	Set("DB_DRIVER", "postgres")
	assert.Contains(t, DatabaseDSN(), "dbname=cafe")

	Set("DB_DRIVER", "oracle")
	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, "cafe.db", DatabaseDSN())
}
