package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const DefaultBackendURL = "http://localhost:8000"

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	if root != nil {
		_ = viper.BindPFlags(root.PersistentFlags())
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyBackendURL, DefaultBackendURL)
	viper.SetDefault(KeyBackendTimeout, "30s")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyHost, "0.0.0.0")
	viper.SetDefault(KeyPort, 8787)
	viper.SetDefault(KeySessionTTL, "1h")
	viper.SetDefault(KeyAuthMode, AuthModeOAuth)
	viper.SetDefault(KeyImageProvider, ImageProviderWorkersAI)
	viper.SetDefault(KeyImageModel, "@cf/black-forest-labs/flux-1-schnell")
	viper.SetDefault(KeyImageTimeout, "2m")
	viper.SetDefault(KeyCFAPIBase, "https://api.cloudflare.com/client/v4")
	viper.SetDefault(KeyOpenAIImageModel, "dall-e-3")
}

// BackendURL never returns an empty string; a blank value falls back to the
// local default.
func BackendURL() string {
	if v := strings.TrimSpace(viper.GetString(KeyBackendURL)); v != "" {
		return strings.TrimRight(v, "/")
	}
	return DefaultBackendURL
}

func BackendTimeout() time.Duration { return durationOr(KeyBackendTimeout, 30*time.Second) }
func LogLevel() string              { return viper.GetString(KeyLogLevel) }
func Host() string                  { return viper.GetString(KeyHost) }
func Port() int                     { return viper.GetInt(KeyPort) }
func PublicURL() string             { return viper.GetString(KeyPublicURL) }
func SessionTTL() time.Duration     { return durationOr(KeySessionTTL, time.Hour) }
func AuthMode() string              { return strings.ToLower(viper.GetString(KeyAuthMode)) }
func OAuthIssuerURL() string        { return viper.GetString(KeyOAuthIssuerURL) }
func OAuthUserInfoURL() string      { return viper.GetString(KeyOAuthUserInfoURL) }
func DevUserSub() string            { return viper.GetString(KeyDevUserSub) }
func DevUserEmail() string          { return viper.GetString(KeyDevUserEmail) }
func DevPermissions() []string      { return SplitList(viper.GetString(KeyDevPermissions)) }
func ImageProvider() string         { return strings.ToLower(viper.GetString(KeyImageProvider)) }
func ImageModel() string            { return viper.GetString(KeyImageModel) }
func ImageTimeout() time.Duration   { return durationOr(KeyImageTimeout, 2*time.Minute) }
func CFAccountID() string           { return viper.GetString(KeyCFAccountID) }
func CFAPIToken() string            { return viper.GetString(KeyCFAPIToken) }
func CFAPIBase() string             { return viper.GetString(KeyCFAPIBase) }
func OpenAIAPIKey() string          { return viper.GetString(KeyOpenAIAPIKey) }
func OpenAIBaseURL() string         { return viper.GetString(KeyOpenAIBaseURL) }
func OpenAIImageModel() string      { return viper.GetString(KeyOpenAIImageModel) }

// SplitList parses a comma separated list, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationOr(key string, fallback time.Duration) time.Duration {
	trimmed := strings.TrimSpace(viper.GetString(key))
	if trimmed == "" {
		return fallback
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
