package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// ServiceInterface is the outbound mail seam. The notifier depends on this
// rather than on SES directly so tests can substitute a fake.
type ServiceInterface interface {
	SendEmail(ctx context.Context, to, subject, plainBody, htmlBody string) error
}

// SESV2Sender delivers transactional mail through Amazon SES v2.
type SESV2Sender struct {
	client *sesv2.Client
	from   string
}

// NewSESV2Sender builds a sender for the given region. Credentials come from
// the default AWS credential chain.
func NewSESV2Sender(ctx context.Context, region, from string) (*SESV2Sender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("email: loading aws config: %w", err)
	}
	return &SESV2Sender{client: sesv2.NewFromConfig(cfg), from: from}, nil
}

func (s *SESV2Sender) SendEmail(ctx context.Context, to, subject, plainBody, htmlBody string) error {
	utf8 := aws.String("UTF-8")
	input := &sesv2.SendEmailInput{
		FromEmailAddress: &s.from,
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject, Charset: utf8},
				Body: &types.Body{
					Text: &types.Content{Data: &plainBody, Charset: utf8},
					Html: &types.Content{Data: &htmlBody, Charset: utf8},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("email: sending via SES: %w", err)
	}
	return nil
}
