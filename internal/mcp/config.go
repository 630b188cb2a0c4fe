package mcp

import (
	"fmt"
	"net/http"

	"github.com/roivaz/memory-mcp/internal/auth"
	"github.com/roivaz/memory-mcp/internal/backend"
	"github.com/roivaz/memory-mcp/internal/config"
	"github.com/roivaz/memory-mcp/internal/imagegen"
	"github.com/roivaz/memory-mcp/internal/logging"
)

type Config struct {
	Gateway GatewayConfig
	OAuth   http.Handler
}

func DefaultConfig(log logging.Logger) (Config, error) {
	deps, err := DefaultDependencies(log)
	if err != nil {
		return Config{}, err
	}

	var resolver auth.Resolver
	switch config.AuthMode() {
	case config.AuthModeStatic:
		resolver = auth.StaticResolver{Props: DevProps()}
	case config.AuthModeOAuth:
		if config.OAuthUserInfoURL() == "" {
			return Config{}, fmt.Errorf("%s must be set when auth_mode is %q", config.KeyOAuthUserInfoURL, config.AuthModeOAuth)
		}
		resolver = &auth.UserInfoResolver{URL: config.OAuthUserInfoURL(), Timeout: config.BackendTimeout()}
	default:
		return Config{}, fmt.Errorf("unknown auth_mode %q", config.AuthMode())
	}

	oauth, err := auth.NewDelegate(config.OAuthIssuerURL(), log)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Gateway: GatewayConfig{
			Resolver:     resolver,
			Dependencies: deps,
			SessionTTL:   config.SessionTTL(),
			PublicURL:    config.PublicURL(),
			Logger:       log,
		},
		OAuth: oauth,
	}, nil
}

// DefaultDependencies wires the backend client and the configured image
// provider.
func DefaultDependencies(log logging.Logger) (Dependencies, error) {
	images, err := newImageGenerator(log)
	if err != nil {
		return Dependencies{}, err
	}
	return Dependencies{
		Memory: backend.NewResolvingClient(config.BackendURL, config.BackendTimeout(), log),
		Images: images,
		Logger: log.WithName("tools"),
	}, nil
}

// DevProps is the fixed identity used by static auth and the stdio transport.
func DevProps() auth.Props {
	return auth.NewStaticProps(config.DevUserSub(), config.DevUserEmail(), config.DevPermissions())
}

func newImageGenerator(log logging.Logger) (imagegen.Generator, error) {
	switch config.ImageProvider() {
	case config.ImageProviderNone, "":
		return imagegen.Unconfigured{}, nil
	case config.ImageProviderWorkersAI:
		if config.CFAccountID() == "" || config.CFAPIToken() == "" {
			log.Info("workers ai credentials not set; image generation disabled")
			return imagegen.Unconfigured{}, nil
		}
		return imagegen.NewWorkersAI(imagegen.WorkersAIConfig{
			APIBase:   config.CFAPIBase(),
			AccountID: config.CFAccountID(),
			APIToken:  config.CFAPIToken(),
			Model:     config.ImageModel(),
			Timeout:   config.ImageTimeout(),
			Logger:    log,
		})
	case config.ImageProviderOpenAI:
		return imagegen.NewOpenAI(imagegen.OpenAIConfig{
			APIKey:  config.OpenAIAPIKey(),
			BaseURL: config.OpenAIBaseURL(),
			Model:   config.OpenAIImageModel(),
			Timeout: config.ImageTimeout(),
		})
	default:
		return nil, fmt.Errorf("unknown image_provider %q", config.ImageProvider())
	}
}
