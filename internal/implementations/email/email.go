package email

import (
	"context"
	"encoding/json"
	c "verifyme/internal/core/domain/common"
	"verifyme/internal/core/domain/user"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type sesClient interface {
	SendTemplatedEmail(
		ctx context.Context,
		params *ses.SendTemplatedEmailInput,
		optFns ...func(*ses.Options),
	) (*ses.SendTemplatedEmailOutput, error)
}

type SESSender struct {
	ses sesClient
	// This address must be verified with Amazon SES.
	sender                    string
	accountActivationTemplate string
}

func NewSESSender(awsConfig aws.Config, sender string, accountActivationTemplate string) *SESSender {
	return &SESSender{
		ses:                       ses.NewFromConfig(awsConfig),
		sender:                    sender,
		accountActivationTemplate: accountActivationTemplate,
	}
}

func (s *SESSender) SendActivationCode(ctx context.Context, email c.Email, code user.ActivationCode) error {
	templateParamsBytes, err := json.Marshal(
		accountActivationTemplateParams{ActivationCode: string(code)},
	)
	if err != nil {
		return err
	}
	templateParams := string(templateParamsBytes)

	_, err = s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: &s.sender,
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{string(email)},
			},
			Template:     &s.accountActivationTemplate,
			TemplateData: &templateParams,
		},
	)
	return err
}

type accountActivationTemplateParams struct {
	ActivationCode string `json:"activationCode"`
}
