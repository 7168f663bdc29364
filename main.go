package main

import (
	"fmt"
	"log"
	"os"

	"github.com/eisenwinter/veluxidp/cmd"
	"github.com/eisenwinter/veluxidp/config"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	Version   = "?"
	BuildTime = "?"
	GitCommit = "-"
	GitRef    = "-"
)

func main() {
	//version info
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("veluxidp %s, built %s from %s (%s)", Version, BuildTime, GitCommit, GitRef)
		return
	}
	logger := bootstrap()
	defer func() {
		_ = logger.Sync()
	}()
	cmd.TopLevelLogger = logger
	cmd.Execute()
}

func bootstrap() *zap.Logger {
	if _, err := os.Stat(".env"); err == nil {
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Error loading .env file")
		}
	}
	cfg := zap.NewProductionConfig()
	if r := os.Getenv("DEBUG_LOG"); r == "true" {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		log.Fatal(err)
	}
	cobra.OnInitialize(func() { initConfig(logger) })
	return logger
}

func setDefaults() {
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.timeout", "50s")
	viper.SetDefault("database.type", "dynamodb")
	viper.SetDefault("dynamodb.authorization-codes-table", "AuthorizationCodes")
	viper.SetDefault("dynamodb.access-tokens-table", "AccessTokens")
	viper.SetDefault("dynamodb.users-table", "VeluxUsers")
	viper.SetDefault("velux.token-url", "https://app.velux-active.com/oauth2/token")
	viper.SetDefault("velux.homes-url", "https://app.velux-active.com/api/homesdata")
	viper.SetDefault("velux.user-prefix", "velux")
	viper.SetDefault("velux.timeout", "20s")
	viper.SetDefault("velux.home-info-retries", 2)
	viper.SetDefault("velux.home-info-interval", "500ms")
	viper.SetDefault("behaviour.code-expiry", "10m")
	viper.SetDefault("behaviour.token-expiry", "1h")
	viper.SetDefault("behaviour.single-use-codes", true)
	viper.SetDefault("behaviour.enforce-client-binding", false)
	viper.SetDefault("behaviour.password-hash-cost", 10)
}

func initConfig(logger *zap.Logger) {
	bind := func(from string, to string) {
		err := viper.BindEnv(to, from)
		if err != nil {
			logger.Error("unable to bindenv", zap.String("from", from), zap.String("to", to), zap.Error(err))
		}
	}
	setDefaults()
	bind("PORT", "server.port")
	bind("ADDRESS", "server.address")

	bind("VLX_PORT", "server.port")
	bind("VLX_ADDRESS", "server.address")
	bind("VLX_SERVER_TIMEOUT", "server.timeout")
	bind("VLX_SERVER_CORS_ALLOWED_ORIGINS", "server.cors.allowed-origins")
	bind("VLX_SERVER_CORS_ALLOWED_METHODS", "server.cors.allowed-methods")
	bind("VLX_SERVER_CORS_ALLOW_CREDENTIALS", "server.cors.allow-credentials")

	bind("VLX_DATABASE_TYPE", "database.type")
	bind("VLX_DATABASE_DSN", "database.dsn")

	bind("VLX_DYNAMODB_REGION", "dynamodb.region")
	bind("AWS_REGION", "dynamodb.region")
	bind("VLX_DYNAMODB_ENDPOINT", "dynamodb.endpoint")
	bind("VLX_DYNAMODB_AUTHORIZATION_CODES_TABLE", "dynamodb.authorization-codes-table")
	bind("VLX_DYNAMODB_ACCESS_TOKENS_TABLE", "dynamodb.access-tokens-table")
	bind("VLX_DYNAMODB_USERS_TABLE", "dynamodb.users-table")

	bind("VLX_VELUX_TOKEN_URL", "velux.token-url")
	bind("VLX_VELUX_HOMES_URL", "velux.homes-url")
	bind("VLX_VELUX_WARM_UP_URL", "velux.warm-up-url")
	bind("VLX_VELUX_CLIENT_ID", "velux.client-id")
	bind("VLX_VELUX_CLIENT_SECRET", "velux.client-secret")
	bind("VLX_VELUX_USER_PREFIX", "velux.user-prefix")
	bind("VLX_VELUX_TIMEOUT", "velux.timeout")
	bind("VLX_VELUX_HOME_INFO_RETRIES", "velux.home-info-retries")
	bind("VLX_VELUX_HOME_INFO_INTERVAL", "velux.home-info-interval")

	bind("VLX_BEHAVIOUR_CODE_EXPIRY", "behaviour.code-expiry")
	bind("VLX_BEHAVIOUR_TOKEN_EXPIRY", "behaviour.token-expiry")
	bind("VLX_BEHAVIOUR_SINGLE_USE_CODES", "behaviour.single-use-codes")
	bind("VLX_BEHAVIOUR_ENFORCE_CLIENT_BINDING", "behaviour.enforce-client-binding")
	bind("VLX_BEHAVIOUR_PASSWORD_HASH_COST", "behaviour.password-hash-cost")

	if cmd.ConfigFileLocation != "" {
		logger.Debug("Using supplied config file", zap.String("file", cmd.ConfigFileLocation))
		viper.SetConfigFile(cmd.ConfigFileLocation)
	} else {
		path, err := os.Getwd()
		if err != nil {
			logger.Warn("Unable to get current working dir", zap.Error(err))
		}
		cobra.CheckErr(err)
		viper.AddConfigPath(path)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		logger.Debug("Looking for default config file")
	}
	//precedence: environment overwrites yml
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Debug("No config file loaded")
	} else {
		logger.Debug("Config file loaded", zap.String("file", viper.ConfigFileUsed()))
	}

	conf := &config.Configuration{}
	err := viper.Unmarshal(conf)
	if err != nil {
		logger.Fatal("Unable to unmarshall config", zap.Error(err))
	}
	logger.Debug("Config loaded", zap.Any("config", conf))
	logger.Debug("Validating final config")
	if err = conf.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}
	if conf.DebugMode() {
		logger.Warn("Running in debug mode")
	}
	cmd.LoadedConfig = conf
}
