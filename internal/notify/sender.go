// AngelaMos | 2026
// sender.go

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/angelamos/studio-portal/internal/config"
)

type Message struct {
	To       string
	Subject  string
	Body     string
	ReplyTo  string
	Template string
}

type SendResult struct {
	ProviderID   string
	ProviderName string
}

type Sender interface {
	Send(ctx context.Context, msg *Message) (*SendResult, error)
	Name() string
}

// NewSender picks the delivery provider named in config.
func NewSender(
	ctx context.Context,
	cfg config.EmailConfig,
	creds config.StorageConfig,
	logger *slog.Logger,
) (Sender, error) {
	switch cfg.Provider {
	case "ses":
		return NewSESSender(ctx, cfg, creds)
	case "log", "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

type SESSender struct {
	client   *ses.Client
	from     string
	fromName string
}

// NewSESSender shares the storage credentials when they are set and
// otherwise uses the default AWS chain.
func NewSESSender(
	ctx context.Context,
	cfg config.EmailConfig,
	creds config.StorageConfig,
) (*SESSender, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if creds.AccessKeyID != "" && creds.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				creds.AccessKeyID,
				creds.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SESSender{
		client:   ses.NewFromConfig(awsCfg),
		from:     cfg.From,
		fromName: cfg.FromName,
	}, nil
}

func (s *SESSender) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	source := s.from
	if s.fromName != "" {
		source = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(source),
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(msg.Subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(msg.Body),
				},
			},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("ses send: %w", err)
	}

	return &SendResult{
		ProviderID:   aws.ToString(out.MessageId),
		ProviderName: s.Name(),
	}, nil
}

func (s *SESSender) Name() string { return "ses" }

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg *Message) (*SendResult, error) {
	s.logger.Info("email",
		"to", msg.To,
		"subject", msg.Subject,
		"template", msg.Template,
		"bytes", len(msg.Body),
	)
	return &SendResult{ProviderName: s.Name()}, nil
}

func (s *LogSender) Name() string { return "log" }

// RecordingSender keeps every message in memory.
type RecordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

func (s *RecordingSender) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *RecordingSender) Send(_ context.Context, msg *Message) (*SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, *msg)
	return &SendResult{ProviderName: s.Name()}, nil
}

func (s *RecordingSender) Name() string { return "recording" }

func (s *RecordingSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
