package config

import (
	"errors"
	"os"
	"time"
)

// ServerConfiguration contains the server settings
type ServerConfiguration struct {
	Port    int
	Address string
	// Timeout bounds a single request including all vendor calls
	Timeout time.Duration      `mapstructure:"timeout"`
	CORS    *CORSConfiguration `mapstructure:"cors"`
}

// CORSConfiguration very basic cors configuration
type CORSConfiguration struct {
	AllowCredentials bool     `mapstructure:"allow-credentials"`
	AllowedMethods   []string `mapstructure:"allowed-methods"`
	AllowedOrigins   []string `mapstructure:"allowed-origins"`
}

// DatabaseConfiguration selects the record store backend.
// Type is one of dynamodb, sqlite, mysql or pg, DSN is only used by the sql backends.
type DatabaseConfiguration struct {
	Type string
	DSN  string `json:"-"`
}

// DynamoDBConfiguration contains the settings for the dynamodb record store
type DynamoDBConfiguration struct {
	Region string
	// Endpoint overrides the aws endpoint, mostly useful for dynamodb-local
	Endpoint           string `mapstructure:"endpoint"`
	AuthorizationCodes string `mapstructure:"authorization-codes-table"`
	AccessTokens       string `mapstructure:"access-tokens-table"`
	Users              string `mapstructure:"users-table"`
}

// VeluxConfiguration habours everything needed to talk to the velux backend
type VeluxConfiguration struct {
	TokenURL     string        `mapstructure:"token-url"`
	HomesURL     string        `mapstructure:"homes-url"`
	WarmUpURL    string        `mapstructure:"warm-up-url"`
	ClientID     string        `mapstructure:"client-id"`
	ClientSecret string        `mapstructure:"client-secret"      json:"-"`
	UserPrefix   string        `mapstructure:"user-prefix"`
	Timeout      time.Duration `mapstructure:"timeout"`
	// HomeInfoRetries is the number of retries after the first failed home info request
	HomeInfoRetries  int           `mapstructure:"home-info-retries"`
	HomeInfoInterval time.Duration `mapstructure:"home-info-interval"`
}

// BehaviourConfiguration configures how the service will behave
type BehaviourConfiguration struct {
	CodeExpiry  time.Duration `mapstructure:"code-expiry"`
	TokenExpiry time.Duration `mapstructure:"token-expiry"`
	// SingleUseCodes redeems authorization codes on exchange
	SingleUseCodes bool `mapstructure:"single-use-codes"`
	// EnforceClientBinding rejects exchanges where client_id or redirect_uri
	// differ from the values recorded on authorization
	EnforceClientBinding bool `mapstructure:"enforce-client-binding"`
	// PasswordHashCost is the bcrypt cost used for stored user passwords
	PasswordHashCost int `mapstructure:"password-hash-cost"`
}

// Configuration habours the entire configuration
type Configuration struct {
	Server    *ServerConfiguration    `mapstructure:"server"`
	Database  *DatabaseConfiguration  `mapstructure:"database"`
	DynamoDB  *DynamoDBConfiguration  `mapstructure:"dynamodb"`
	Velux     *VeluxConfiguration     `mapstructure:"velux"`
	Behaviour *BehaviourConfiguration `mapstructure:"behaviour"`
}

// Validate does some basic validation of the config file and tries to be helpful on missconfiguration
func (c *Configuration) Validate() error {
	if c.Database == nil {
		return errors.New("no database configuration found")
	}
	switch c.Database.Type {
	case "dynamodb":
		if c.DynamoDB == nil {
			return errors.New("database.type dynamodb requires a dynamodb configuration")
		}
		if c.DynamoDB.AuthorizationCodes == "" || c.DynamoDB.AccessTokens == "" || c.DynamoDB.Users == "" {
			return errors.New("dynamodb needs authorization-codes-table, access-tokens-table and users-table")
		}
	case "sqlite", "mysql", "pg":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for sql databases")
		}
	default:
		return errors.New("database.type must be one of dynamodb, sqlite, mysql, pg")
	}
	if c.Velux == nil {
		return errors.New("no velux configuration found")
	}
	if c.Velux.TokenURL == "" || c.Velux.HomesURL == "" {
		return errors.New("velux.token-url and velux.homes-url are required")
	}
	if c.Velux.ClientID == "" {
		return errors.New("velux.client-id is required")
	}
	if c.Behaviour == nil {
		return errors.New("no behaviour configuration found")
	}
	if c.Behaviour.CodeExpiry <= 0 || c.Behaviour.TokenExpiry <= 0 {
		return errors.New("behaviour.code-expiry and behaviour.token-expiry must be positive")
	}
	if c.Server == nil {
		return errors.New("no server configuration found")
	}
	return nil
}

// DebugMode returns true if the VLX_DEBUG_MODE variable is set
func (*Configuration) DebugMode() bool {
	if r := os.Getenv("VLX_DEBUG_MODE"); r == "true" {
		return true
	}
	return false
}
