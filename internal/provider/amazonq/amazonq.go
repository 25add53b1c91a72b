package amazonq

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/qbusiness"

	"github.com/communityempower/ai-gateway/internal/provider"
)

const requestTimeout = 25 * time.Second

// ChatAPI is the slice of the qbusiness client the provider needs.
type ChatAPI interface {
	ChatSync(ctx context.Context, params *qbusiness.ChatSyncInput, optFns ...func(*qbusiness.Options)) (*qbusiness.ChatSyncOutput, error)
}

// QProvider fronts an Amazon Q Business application. It exposes no model
// list: Q picks its own model behind the application.
type QProvider struct {
	client        ChatAPI
	applicationID string
}

// New wraps a qbusiness client. The provider is unavailable unless both a
// client and an application ID are configured.
func New(client ChatAPI, applicationID string) *QProvider {
	return &QProvider{client: client, applicationID: applicationID}
}

func (p *QProvider) Chat(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if !p.Available() {
		return nil, fmt.Errorf("amazonq: client or application id not configured")
	}

	// Q has no system field; the instruction rides ahead of the question.
	message := req.Message
	if req.System != "" {
		message = fmt.Sprintf("%s\n\n%s", req.System, req.Message)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.client.ChatSync(ctx, &qbusiness.ChatSyncInput{
		ApplicationId: aws.String(p.applicationID),
		UserMessage:   aws.String(message),
	})
	if err != nil {
		return nil, fmt.Errorf("amazonq: chat sync: %w", err)
	}

	answer := aws.ToString(out.SystemMessage)
	if answer == "" {
		return nil, provider.ErrNoResponse
	}

	if n := len(out.SourceAttributions); n > 0 {
		log.Printf("amazonq: answer cited %d sources", n)
	}

	return &provider.Response{
		Text:      answer,
		Provider:  p.Name(),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *QProvider) Name() string {
	return "amazon_q"
}

func (p *QProvider) Available() bool {
	return p.client != nil && p.applicationID != ""
}

func (p *QProvider) Models() []string {
	return nil
}
