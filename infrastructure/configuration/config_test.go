package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var c Config
	applyDefaults(&c)

	assert.Equal(t, int64(2), c.Economy.InitialBonus)
	assert.Equal(t, int64(2), c.Economy.TokensPerVideo)
	assert.Equal(t, int64(1000), c.Economy.MinWithdrawal)
	assert.Equal(t, int64(2), c.Featured.MinBid)
	assert.Equal(t, 24*time.Hour, c.Featured.Duration())
	assert.Equal(t, 3, c.Featured.MaxAttempts)
	assert.Equal(t, []int{30, 25, 20}, c.Referral.PositionPercents)
	assert.Equal(t, time.Hour, c.Referral.PayoutInterval)
	assert.Equal(t, 100, c.Referral.MaxPercent)
}

func TestApplyDefaults_KeepsConfiguredValues(t *testing.T) {
	c := Config{
		Featured: Featured{MinBid: 5, DurationHours: 12},
		Referral: Referral{PositionPercents: []int{50}, VolumeBonus: []VolumeBonus{}},
	}
	applyDefaults(&c)

	assert.Equal(t, int64(5), c.Featured.MinBid)
	assert.Equal(t, 12*time.Hour, c.Featured.Duration())
	assert.Equal(t, []int{50}, c.Referral.PositionPercents)
	assert.Empty(t, c.Referral.VolumeBonus, "an explicitly empty bonus list stays empty")
}

func TestReferralLocation(t *testing.T) {
	assert.Equal(t, time.UTC, Referral{}.Location())
	assert.Equal(t, time.UTC, Referral{Timezone: "Not/AZone"}.Location())

	loc := Referral{Timezone: "Europe/Moscow"}.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "Europe/Moscow", loc.String())
}

func TestInitApp_EnvOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("ADMIN_KEY", "adm1n")
	t.Setenv("APP_PORT", "8088")

	var c Config
	initApp(&c)

	assert.Equal(t, "s3cret", c.App.SecretKey)
	assert.Equal(t, "adm1n", c.App.AdminKey)
	assert.Equal(t, 8088, c.App.Port)
}

func TestInitDatabase_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")

	var c Config
	initDatabase(&c)

	assert.Equal(t, "db.internal", c.Database.Psql.Host)
	assert.Equal(t, "5432", c.Database.Psql.Port)
	assert.Equal(t, "disable", c.Database.Psql.SSLMode)
	assert.Equal(t, "1433", c.Database.Mssql.Port)
}

func TestLoadEnvFromFile_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TP_FROM_FILE=file\nTP_PRESET=file\n"), 0o600))
	t.Setenv("TP_PRESET", "os")

	LoadEnvFromFile(filepath.Join(dir, "missing.env"), path)
	t.Cleanup(func() { _ = os.Unsetenv("TP_FROM_FILE") })

	assert.Equal(t, "file", os.Getenv("TP_FROM_FILE"))
	assert.Equal(t, "os", os.Getenv("TP_PRESET"))
}
