package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.opentelemetry.io/otel/trace"

	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/config"
	"github.com/lokit-s/A2A-protocol/internal/infra/tracer"
)

var _ domain.Classifier = (*BedrockProvider)(nil)

// bedrockConverseAPI abstracts the Bedrock runtime for testability.
type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockProvider classifies via the AWS Bedrock Converse API, for
// deployments that keep the classifier inside AWS instead of Groq.
type BedrockProvider struct {
	model  string
	client bedrockConverseAPI
	logger *slog.Logger
}

// NewBedrockProvider creates a provider using the default AWS credential chain.
func NewBedrockProvider(cfg config.LLMConfig, logger *slog.Logger) (*BedrockProvider, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &BedrockProvider{
		model:  cfg.Model,
		client: bedrockruntime.NewFromConfig(awsCfg),
		logger: logger,
	}, nil
}

// newBedrockProviderWithClient injects a client for testing.
func newBedrockProviderWithClient(model string, client bedrockConverseAPI, logger *slog.Logger) *BedrockProvider {
	return &BedrockProvider{model: model, client: client, logger: logger}
}

// Classify implements domain.Classifier.
func (p *BedrockProvider) Classify(ctx context.Context, system, user string) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.classify",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", p.Name()),
			tracer.StringAttr("llm.model", p.model),
		),
	)
	defer span.End()

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(p.model),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: system},
		},
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: user},
				},
			},
		},
	}

	output, err := p.client.Converse(ctx, input)
	if err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("%w: %v", domain.ErrClassifier, err)
	}

	reply, err := converseText(output)
	if err != nil {
		tracer.RecordError(span, err)
		return "", err
	}

	tracer.SetOK(span)
	p.logger.Debug("classification completed", "provider", p.Name(), "model", p.model)
	return reply, nil
}

// Name implements domain.Classifier.
func (p *BedrockProvider) Name() string { return "bedrock" }

func converseText(output *bedrockruntime.ConverseOutput) (string, error) {
	msg, ok := output.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("%w: unexpected converse output type", domain.ErrClassifier)
	}
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			return text.Value, nil
		}
	}
	return "", fmt.Errorf("%w: no text content in converse output", domain.ErrClassifier)
}
