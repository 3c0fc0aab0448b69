package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	activationSubject  = "Your activation code"
	activationHtmlPart = "<p>Your activation code is <strong>{{activationCode}}</strong>.</p>" +
		"<p>It expires in a minute.</p>"
	activationTextPart = "Your activation code is {{activationCode}}. It expires in a minute."
)

type settings struct {
	AwsRegion                       string `env:"AWS_REGION,required"`
	AwsAccessKey                    string `env:"AWS_ACCESS_KEY"`
	AwsSecretKey                    string `env:"AWS_SECRET_KEY"`
	AwsEmailSender                  string `env:"AWS_EMAIL_SENDER"`
	AwsEmailActivateAccountTemplate string `env:"AWS_EMAIL_ACTIVATE_ACCOUNT_TEMPLATE" envDefault:"activate-account"`
}

// Manages the SES template used for activation emails:
//
//	aws create
//	aws delete
//	aws send -to a@x.com -code 0427
func main() {
	if len(os.Args) < 2 {
		exit(fmt.Errorf("usage: aws create|delete|send [flags]"))
	}

	_ = godotenv.Load()
	cfg := settings{}
	if err := env.Parse(&cfg); err != nil {
		exit(err)
	}
	svc := ses.NewFromConfig(loadAwsConfig(cfg))

	switch os.Args[1] {
	case "create":
		createEmailTemplate(svc, cfg.AwsEmailActivateAccountTemplate)
	case "delete":
		deleteEmailTemplate(svc, cfg.AwsEmailActivateAccountTemplate)
	case "send":
		flags := flag.NewFlagSet("send", flag.ExitOnError)
		to := flags.String("to", "", "recipient address")
		code := flags.String("code", "0000", "activation code to render")
		flags.Parse(os.Args[2:])
		if *to == "" || cfg.AwsEmailSender == "" {
			exit(fmt.Errorf("-to and AWS_EMAIL_SENDER must be set"))
		}
		sendEmailTemplate(svc, cfg.AwsEmailSender, *to, cfg.AwsEmailActivateAccountTemplate, *code)
	default:
		exit(fmt.Errorf("unknown command %q", os.Args[1]))
	}
}

func loadAwsConfig(cfg settings) aws.Config {
	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(cfg.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AwsAccessKey,
				cfg.AwsSecretKey,
				"",
			),
		),
	)
	if err != nil {
		exit(err)
	}
	return awsCfg
}

func createEmailTemplate(svc *ses.Client, name string) {
	result, err := svc.CreateTemplate(context.Background(), &ses.CreateTemplateInput{
		Template: &types.Template{
			SubjectPart:  aws.String(activationSubject),
			HtmlPart:     aws.String(activationHtmlPart),
			TextPart:     aws.String(activationTextPart),
			TemplateName: &name,
		},
	})
	if err != nil {
		exit(err)
	}

	fmt.Println("Success:")
	fmt.Println(result)
}

func deleteEmailTemplate(svc *ses.Client, name string) {
	result, err := svc.DeleteTemplate(
		context.Background(),
		&ses.DeleteTemplateInput{
			TemplateName: &name,
		},
	)
	if err != nil {
		exit(err)
	}

	fmt.Println("Success:")
	fmt.Println(result)
}

func sendEmailTemplate(svc *ses.Client, sender string, to string, name string, code string) {
	args, err := json.Marshal(map[string]string{"activationCode": code})
	if err != nil {
		exit(err)
	}
	result, err := svc.SendTemplatedEmail(
		context.Background(),
		&ses.SendTemplatedEmailInput{
			Source: aws.String(sender),
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{to},
			},
			Template:     &name,
			TemplateData: aws.String(string(args)),
		},
	)
	if err != nil {
		exit(err)
	}

	fmt.Println("Success:")
	fmt.Println(result)
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
