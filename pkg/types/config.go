package types

import (
	"time"
)

// AppConfig is the root configuration for the wabridge gateway
type AppConfig struct {
	DebugMode  bool `key:"debugMode" json:"debug_mode"`
	PrettyLogs bool `key:"prettyLogs" json:"pretty_logs"`

	AppURL    string          `key:"appUrl" json:"app_url"` // Public base URL, used for post-OAuth redirects
	Database  DatabaseConfig  `key:"database" json:"database"`
	Gateway   GatewayConfig   `key:"gateway" json:"gateway"`
	OAuth     OAuthConfig     `key:"oauth" json:"oauth"`
	Providers ProvidersConfig `key:"providers" json:"providers"`
}

// ----------------------------------------------------------------------------
// Database Configuration
// ----------------------------------------------------------------------------

type DatabaseConfig struct {
	Postgres PostgresConfig `key:"postgres" json:"postgres"`
}

type PostgresConfig struct {
	Host            string        `key:"host" json:"host"`
	Port            int           `key:"port" json:"port"`
	User            string        `key:"user" json:"user"`
	Password        string        `key:"password" json:"password"`
	Database        string        `key:"database" json:"database"`
	SSLMode         string        `key:"sslMode" json:"ssl_mode"`
	MaxOpenConns    int           `key:"maxOpenConns" json:"max_open_conns"`
	MaxIdleConns    int           `key:"maxIdleConns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `key:"connMaxLifetime" json:"conn_max_lifetime"`
}

// ----------------------------------------------------------------------------
// Gateway Configuration
// ----------------------------------------------------------------------------

type GatewayConfig struct {
	HTTP            HTTPConfig    `key:"http" json:"http"`
	ShutdownTimeout time.Duration `key:"shutdownTimeout" json:"shutdown_timeout"`
	SessionKey      string        `key:"sessionKey" json:"session_key"` // Secret for session JWT signing
}

type HTTPConfig struct {
	Host             string     `key:"host" json:"host"`
	Port             int        `key:"port" json:"port"`
	EnablePrettyLogs bool       `key:"enablePrettyLogs" json:"enable_pretty_logs"`
	CORS             CORSConfig `key:"cors" json:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `key:"allowOrigins" json:"allow_origins"`
	AllowedMethods []string `key:"allowMethods" json:"allow_methods"`
	AllowedHeaders []string `key:"allowHeaders" json:"allow_headers"`
}

// ----------------------------------------------------------------------------
// OAuth Configuration
// ----------------------------------------------------------------------------

type OAuthConfig struct {
	Google GoogleOAuthConfig `key:"google" json:"google"`
}

// GoogleOAuthConfig configures Google OAuth for platform connections
type GoogleOAuthConfig struct {
	ClientID     string `key:"clientId" json:"client_id"`
	ClientSecret string `key:"clientSecret" json:"client_secret"`
	RedirectURL  string `key:"redirectUrl" json:"redirect_url"` // e.g., http://localhost:1994/api/v1/integrations/google/callback
}

// ----------------------------------------------------------------------------
// Provider Configuration
// ----------------------------------------------------------------------------

type ProvidersConfig struct {
	Gmail    GmailConfig    `key:"gmail" json:"gmail"`
	Calendar CalendarConfig `key:"calendar" json:"calendar"`
}

type GmailConfig struct {
	MaxResults       int `key:"maxResults" json:"max_results"`             // Messages fetched per inbox request
	FetchConcurrency int `key:"fetchConcurrency" json:"fetch_concurrency"` // Parallel per-message detail fetches
}

type CalendarConfig struct {
	MaxResults int           `key:"maxResults" json:"max_results"`
	LookAhead  time.Duration `key:"lookAhead" json:"look_ahead"` // Event window from now
	CalendarID string        `key:"calendarId" json:"calendar_id"`
}
