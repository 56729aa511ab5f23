package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"token-platform/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Logger      Logger      `json:"logger"`
	Economy     Economy     `json:"economy"`
	Featured    Featured    `json:"featured"`
	Referral    Referral    `json:"referral"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	AdminKey    string `json:"adminKey"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
	// AllowOrigins lists CORS origins; empty means local development origins.
	AllowOrigins []string `json:"allowOrigins"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mssql Db `json:"mssql"`
	Mongo Db `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	DB       int    `json:"db"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace        string `json:"namespace"`
	ConnectionString string `json:"connectionString"`
	Queue            string `json:"queue"`
}

type Logger struct {
	Format string `json:"format"`
}

// Economy amounts are integer token minor units.
type Economy struct {
	InitialBonus   int64 `json:"initialBonus"`
	TokensPerVideo int64 `json:"tokensPerVideo"`
	MinWithdrawal  int64 `json:"minWithdrawal"`
}

type Featured struct {
	MinBid        int64 `json:"minBid"`
	DurationHours int   `json:"durationHours"`
	MaxAttempts   int   `json:"maxAttempts"`
}

func (f Featured) Duration() time.Duration { return time.Duration(f.DurationHours) * time.Hour }

type VolumeBonus struct {
	MinReferrals int `json:"minReferrals"`
	Percent      int `json:"percent"`
}

type Referral struct {
	Timezone         string        `json:"timezone"`
	PayoutInterval   time.Duration `json:"payoutInterval"`
	LeaderboardTTL   time.Duration `json:"leaderboardTTL"`
	PositionPercents []int         `json:"positionPercents"`
	DefaultPercent   int           `json:"defaultPercent"`
	VolumeBonus      []VolumeBonus `json:"volumeBonus"`
	MaxPercent       int           `json:"maxPercent"`
}

// Location resolves Timezone, falling back to UTC.
func (r Referral) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		logger.GetLogger().WithField("timezone", r.Timezone).Warn("Unknown referral timezone, using UTC")
		return time.UTC
	}
	return loc
}

var C Config

func init() {
	LoadEnvFromFile("config.env", ".env")
	LoadConfig()
	applyDefaults(&C)
	initDatabase(&C)
	initApp(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().WithField("config", name).Warn("Config file not found, using defaults")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
}

func getConfig() string {
	name := "config"
	if env := os.Getenv("ENV"); env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func applyDefaults(c *Config) {
	if c.Economy.InitialBonus == 0 {
		c.Economy.InitialBonus = 2
	}
	if c.Economy.TokensPerVideo == 0 {
		c.Economy.TokensPerVideo = 2
	}
	if c.Economy.MinWithdrawal == 0 {
		c.Economy.MinWithdrawal = 1000
	}
	if c.Featured.MinBid == 0 {
		c.Featured.MinBid = 2
	}
	if c.Featured.DurationHours == 0 {
		c.Featured.DurationHours = 24
	}
	if c.Featured.MaxAttempts == 0 {
		c.Featured.MaxAttempts = 3
	}
	if c.Referral.Timezone == "" {
		c.Referral.Timezone = "UTC"
	}
	if c.Referral.PayoutInterval == 0 {
		c.Referral.PayoutInterval = time.Hour
	}
	if c.Referral.LeaderboardTTL == 0 {
		c.Referral.LeaderboardTTL = 30 * time.Second
	}
	if len(c.Referral.PositionPercents) == 0 {
		c.Referral.PositionPercents = []int{30, 25, 20}
	}
	if c.Referral.DefaultPercent == 0 {
		c.Referral.DefaultPercent = 10
	}
	if c.Referral.VolumeBonus == nil {
		c.Referral.VolumeBonus = []VolumeBonus{{MinReferrals: 20, Percent: 5}, {MinReferrals: 50, Percent: 10}}
	}
	if c.Referral.MaxPercent == 0 {
		c.Referral.MaxPercent = 100
	}
	if c.Pubsub.Topic == "" {
		c.Pubsub.Topic = "token-platform-events"
	}
	if c.ServiceBus.Queue == "" {
		c.ServiceBus.Queue = "token-platform-events"
	}
}

func initDatabase(C *Config) {
	setIfEmpty(&C.Database.Psql.Name, "DB_NAME")
	setIfEmpty(&C.Database.Psql.Host, "DB_HOST")
	setIfEmpty(&C.Database.Psql.Port, "DB_PORT")
	setIfEmpty(&C.Database.Psql.User, "DB_USER")
	setIfEmpty(&C.Database.Psql.Password, "DB_PASSWORD")
	setIfEmpty(&C.Database.Psql.SSLMode, "DB_SSLMODE")
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = "5432"
	}
	if C.Database.Psql.SSLMode == "" {
		C.Database.Psql.SSLMode = "disable"
	}

	// Identity store on SQL Server in production (DB_VENDOR=mssql).
	setIfEmpty(&C.Database.Mssql.Name, "MSSQL_DB_NAME")
	setIfEmpty(&C.Database.Mssql.Host, "MSSQL_HOST")
	setIfEmpty(&C.Database.Mssql.Port, "MSSQL_PORT")
	setIfEmpty(&C.Database.Mssql.User, "MSSQL_USER")
	setIfEmpty(&C.Database.Mssql.Password, "MSSQL_PASSWORD")
	if C.Database.Mssql.Port == "" {
		C.Database.Mssql.Port = "1433"
	}

	setIfEmpty(&C.Database.Mongo.Host, "MONGO_HOST")
	setIfEmpty(&C.Database.Mongo.Port, "MONGO_PORT")
	setIfEmpty(&C.Database.Mongo.User, "MONGO_USER")
	setIfEmpty(&C.Database.Mongo.Password, "MONGO_PASSWORD")
	setIfEmpty(&C.Database.Mongo.Name, "MONGO_DB_NAME")

	setIfEmpty(&C.RedisClient.Host, "REDIS_HOST")
	setIfEmpty(&C.RedisClient.Port, "REDIS_PORT")
	setIfEmpty(&C.RedisClient.Password, "REDIS_PASSWORD")
	setIfEmpty(&C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID")
	setIfEmpty(&C.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE")
	setIfEmpty(&C.ServiceBus.ConnectionString, "SERVICEBUS_CONNECTION_STRING")
}

func initApp(C *Config) {
	// SECRET_KEY and ADMIN_KEY from the environment override the config file.
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	if v := os.Getenv("ADMIN_KEY"); v != "" {
		C.App.AdminKey = v
	}
	// Port resolution order: APP_PORT -> PORT -> config -> 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	setIfEmpty(&C.App.TLSCertFile, "TLS_CERT_FILE")
	setIfEmpty(&C.App.TLSKeyFile, "TLS_KEY_FILE")
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
	if C.App.AdminKey == "" {
		logger.GetLogger().Warn("App.AdminKey not set; admin routes will reject every request.")
	}
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(envKey); v != "" {
		*dst = v
	}
}
