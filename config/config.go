// server/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --- Sub-structs mirroring config.yaml ---

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type MongoConfig struct {
	URI     string        `mapstructure:"uri"`
	DBName  string        `mapstructure:"dbName"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

// TTL parses Expiration, falling back to 24h.
func (c JWTConfig) TTL() time.Duration {
	d, err := time.ParseDuration(c.Expiration)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

type AuthConfig struct {
	// UsernameDomain is appended to bare usernames at login and registration.
	UsernameDomain    string `mapstructure:"usernameDomain"`
	SeedAdminEmail    string `mapstructure:"seedAdminEmail"`
	SeedAdminPassword string `mapstructure:"seedAdminPassword"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// Enabled reports whether image uploads can be served.
func (c S3Config) Enabled() bool { return c.Bucket != "" && c.Region != "" }

type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"clientID"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topicPrefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type JobsConfig struct {
	PromotionExpiry string `mapstructure:"promotionExpiry"`
	LowStockDigest  string `mapstructure:"lowStockDigest"`
}

// --- Root config ---

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Auth   AuthConfig   `mapstructure:"auth"`
	S3     S3Config     `mapstructure:"s3"`
	MQTT   MQTTConfig   `mapstructure:"mqtt"`
	Log    LogConfig    `mapstructure:"log"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Jobs   JobsConfig   `mapstructure:"jobs"`
}

// LoadConfig reads config.yaml from path and overrides it with environment variables.
// A .env file in the working directory is loaded first when present.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	v.AutomaticEnv()
	bindEnv(v)

	// A missing config file is fine; env and defaults still apply.
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.dbName", "motohub")
	v.SetDefault("mongo.timeout", "10s")
	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("auth.usernameDomain", "motohub.local")
	v.SetDefault("auth.seedAdminEmail", "admin@motohub.local")
	v.SetDefault("auth.seedAdminPassword", "motohub-admin")
	v.SetDefault("mqtt.clientID", "motohub-api")
	v.SetDefault("mqtt.topicPrefix", "motohub")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("jobs.promotionExpiry", "@hourly")
	v.SetDefault("jobs.lowStockDigest", "@midnight")
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.mode", "GIN_MODE")
	_ = v.BindEnv("mongo.uri", "MONGO_URI")
	_ = v.BindEnv("mongo.dbName", "MONGO_DBNAME")
	_ = v.BindEnv("mongo.timeout", "MONGO_TIMEOUT")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = v.BindEnv("auth.usernameDomain", "AUTH_USERNAME_DOMAIN")
	_ = v.BindEnv("auth.seedAdminEmail", "SEED_ADMIN_EMAIL")
	_ = v.BindEnv("auth.seedAdminPassword", "SEED_ADMIN_PASSWORD")
	_ = v.BindEnv("s3.bucket", "S3_BUCKET")
	_ = v.BindEnv("s3.region", "S3_REGION")
	_ = v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	_ = v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	_ = v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	_ = v.BindEnv("mqtt.broker", "MQTT_BROKER")
	_ = v.BindEnv("mqtt.clientID", "MQTT_CLIENT_ID")
	_ = v.BindEnv("mqtt.username", "MQTT_USERNAME")
	_ = v.BindEnv("mqtt.password", "MQTT_PASSWORD")
	_ = v.BindEnv("mqtt.topicPrefix", "MQTT_TOPIC_PREFIX")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.format", "LOG_FORMAT")
	_ = v.BindEnv("jobs.promotionExpiry", "JOBS_PROMOTION_EXPIRY")
	_ = v.BindEnv("jobs.lowStockDigest", "JOBS_LOW_STOCK_DIGEST")
}
