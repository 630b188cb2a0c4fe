package config

const (
	KeyBackendURL       = "backend_url"
	KeyBackendTimeout   = "backend_timeout"
	KeyLogLevel         = "log_level"
	KeyHost             = "host"
	KeyPort             = "port"
	KeyPublicURL        = "public_url"
	KeySessionTTL       = "session_ttl"
	KeyAuthMode         = "auth_mode"
	KeyOAuthIssuerURL   = "oauth_issuer_url"
	KeyOAuthUserInfoURL = "oauth_userinfo_url"
	KeyDevUserSub       = "dev_user_sub"
	KeyDevUserEmail     = "dev_user_email"
	KeyDevPermissions   = "dev_permissions"
	KeyImageProvider    = "image_provider"
	KeyImageModel       = "image_model"
	KeyImageTimeout     = "image_timeout"
	KeyCFAccountID      = "cloudflare_account_id"
	KeyCFAPIToken       = "cloudflare_api_token"
	KeyCFAPIBase        = "cloudflare_api_base"
	KeyOpenAIAPIKey     = "openai_api_key"
	KeyOpenAIBaseURL    = "openai_base_url"
	KeyOpenAIImageModel = "openai_image_model"
)

const (
	AuthModeOAuth  = "oauth"
	AuthModeStatic = "static"

	ImageProviderWorkersAI = "workers-ai"
	ImageProviderOpenAI    = "openai"
	ImageProviderNone      = "none"
)
