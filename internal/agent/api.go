package agent

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"
)

// APIRunnerConfig contains configuration for creating an APIRunner.
type APIRunnerConfig struct {
	// Model is the Claude model to use.
	Model anthropic.Model
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY.
	APIKey string
	// UseAWSBedrock routes requests through AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g., "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
}

// APIRunner runs coding agents through direct Anthropic API calls.
type APIRunner struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAPIRunner creates a new API-backed runner.
func NewAPIRunner(cfg APIRunnerConfig) (*APIRunner, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	model := cfg.Model
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	if cfg.UseAWSBedrock {
		model = translateModelForBedrock(model)
	}

	return &APIRunner{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// Run sends the task prompt to the API and returns the text response
// as the outcome summary.
func (r *APIRunner) Run(ctx context.Context, prompt string) (*Outcome, error) {
	resp, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     r.model,
		MaxTokens: 8192,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}

	return &Outcome{Summary: summarize(result.String())}, nil
}

// translateModelForBedrock converts standard Anthropic model names to
// Bedrock cross-region inference profile format: us.anthropic.{model}-v1:0.
func translateModelForBedrock(model anthropic.Model) anthropic.Model {
	bedrockModels := map[anthropic.Model]string{
		anthropic.ModelClaudeSonnet4_20250514:  "us.anthropic.claude-sonnet-4-20250514-v1:0",
		anthropic.ModelClaude3_7Sonnet20250219: "us.anthropic.claude-3-7-sonnet-20250219-v1:0",
		anthropic.ModelClaude3_5Haiku20241022:  "us.anthropic.claude-3-5-haiku-20241022-v1:0",
	}
	if bedrockModel, ok := bedrockModels[model]; ok {
		return anthropic.Model(bedrockModel)
	}
	return model
}

// APIFactory creates APIRunner instances sharing one configuration.
type APIFactory struct {
	cfg APIRunnerConfig
}

// NewAPIFactory creates a factory for API-backed runners.
func NewAPIFactory(cfg APIRunnerConfig) *APIFactory {
	return &APIFactory{cfg: cfg}
}

// NewRunner creates a new APIRunner. Client construction errors are
// deferred to the first Run call.
func (f *APIFactory) NewRunner() Runner {
	runner, err := NewAPIRunner(f.cfg)
	if err != nil {
		return &errRunner{err: err}
	}
	return runner
}

// errRunner reports a construction error on first use.
type errRunner struct {
	err error
}

func (r *errRunner) Run(ctx context.Context, prompt string) (*Outcome, error) {
	return nil, r.err
}

// Verify implementations at compile time.
var (
	_ Runner  = (*APIRunner)(nil)
	_ Factory = (*APIFactory)(nil)
)
