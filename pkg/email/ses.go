package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/scholaco/tracker/internal/domain"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends through Amazon SES using the default credential chain.
type SESNotifier struct {
	client sesAPI
	config *EmailConfig
}

func NewSESNotifier(ctx context.Context, config *EmailConfig) (*SESNotifier, error) {
	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESNotifier{client: ses.NewFromConfig(awsCfg), config: config}, nil
}

func (n *SESNotifier) Send(ctx context.Context, to, subject, htmlBody string) (*SendResult, error) {
	out, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.config.from()),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ses: %v", domain.ErrTransport, err)
	}

	return &SendResult{Provider: "ses", MessageID: aws.ToString(out.MessageId)}, nil
}
