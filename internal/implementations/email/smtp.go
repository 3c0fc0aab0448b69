package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"
	c "verifyme/internal/core/domain/common"
	"verifyme/internal/core/domain/user"

	"gopkg.in/gomail.v2"
)

type smtpTransport interface {
	Send(ctx context.Context, m *gomail.Message) error
}

type SMTPSender struct {
	transport smtpTransport
	from      string
}

func NewSMTPSender(
	host string,
	port int,
	username string,
	password string,
	from string,
	timeout time.Duration,
) *SMTPSender {
	return &SMTPSender{
		transport: &netTransport{
			host:     host,
			port:     port,
			username: username,
			password: password,
			timeout:  timeout,
		},
		from: from,
	}
}

func (s *SMTPSender) SendActivationCode(ctx context.Context, email c.Email, code user.ActivationCode) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", string(email))
	m.SetHeader("Subject", "Your activation code")
	m.SetBody("text/plain", fmt.Sprintf("Your activation code is %s.", string(code)))
	m.AddAlternative("text/html", fmt.Sprintf(
		"<p>Your activation code is <strong>%s</strong>.</p>",
		string(code),
	))

	if err := s.transport.Send(ctx, m); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to send activation email: %w", err)
	}
	return nil
}

// netTransport delivers one message per connection. Every read and write on the
// connection shares one deadline, the earlier of ctx's deadline and now+timeout.
type netTransport struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
}

func (t *netTransport) Send(ctx context.Context, m *gomail.Message) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var dialer net.Dialer
	raw, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(t.host, strconv.Itoa(t.port)))
	if err != nil {
		return err
	}
	defer raw.Close()
	if deadline, ok := ctx.Deadline(); ok {
		if err := raw.SetDeadline(deadline); err != nil {
			return err
		}
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			raw.Close()
		case <-stop:
		}
	}()

	conn := raw
	implicitTLS := t.port == 465
	if implicitTLS {
		conn = tls.Client(raw, &tls.Config{ServerName: t.host})
	}
	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok && !implicitTLS {
		if err := client.StartTLS(&tls.Config{ServerName: t.host}); err != nil {
			return err
		}
	}
	if ok, _ := client.Extension("AUTH"); ok && t.username != "" {
		if err := client.Auth(smtp.PlainAuth("", t.username, t.password, t.host)); err != nil {
			return err
		}
	}

	send := gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		if err := client.Mail(from); err != nil {
			return err
		}
		for _, addr := range to {
			if err := client.Rcpt(addr); err != nil {
				return err
			}
		}
		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := msg.WriteTo(w); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	})
	if err := gomail.Send(send, m); err != nil {
		return err
	}
	return client.Quit()
}
