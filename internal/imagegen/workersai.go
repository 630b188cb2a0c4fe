package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/roivaz/memory-mcp/internal/logging"
)

const DefaultWorkersAIModel = "@cf/black-forest-labs/flux-1-schnell"

type WorkersAIConfig struct {
	APIBase   string
	AccountID string
	APIToken  string
	Model     string
	Timeout   time.Duration
	Logger    logging.Logger
}

// WorkersAI runs a text-to-image model through the Cloudflare Workers AI REST
// API.
type WorkersAI struct {
	endpoint string
	model    string
	http     *http.Client
	log      logging.Logger
}

func NewWorkersAI(cfg WorkersAIConfig) (*WorkersAI, error) {
	if cfg.AccountID == "" || cfg.APIToken == "" {
		return nil, errors.New("workers ai requires an account id and api token")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultWorkersAIModel
	}
	base := strings.TrimRight(cfg.APIBase, "/")
	if base == "" {
		base = "https://api.cloudflare.com/client/v4"
	}

	client := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.APIToken,
		TokenType:   "Bearer",
	}))
	client.Timeout = cfg.Timeout

	return &WorkersAI{
		endpoint: base + "/accounts/" + cfg.AccountID + "/ai/run/" + model,
		model:    model,
		http:     client,
		log:      cfg.Logger.WithName("workers-ai"),
	}, nil
}

func (w *WorkersAI) Generate(ctx context.Context, req Request) (Image, error) {
	payload, err := json.Marshal(map[string]any{"prompt": req.Prompt, "steps": req.Steps})
	if err != nil {
		return Image{}, errors.Wrap(err, "encode workers ai request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Image{}, errors.Wrap(err, "build workers ai request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := w.http.Do(httpReq)
	if err != nil {
		return Image{}, errors.Wrap(err, "call workers ai")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Image{}, errors.Wrap(err, "read workers ai response")
	}
	w.log.Debug("model run finished", "model", w.model, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !gjson.GetBytes(body, "success").Bool() {
		if msg := gjson.GetBytes(body, "errors.0.message").String(); msg != "" {
			return Image{}, errors.Newf("workers ai: %s", msg)
		}
		return Image{}, errors.Newf("workers ai returned %d", resp.StatusCode)
	}

	image := gjson.GetBytes(body, "result.image").String()
	if image == "" {
		return Image{}, errors.New("workers ai returned no image")
	}
	return Image{Data: image, MIMEType: "image/jpeg"}, nil
}
