// Package imap provides the IMAP mailbox adapter.
package imap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"parser_server/core/domain"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
	"github.com/jaytaylor/html2text"
)

const (
	defaultSubject = "No Subject"
	defaultSender  = "Unknown Sender"
	previewLength  = 120
)

// Config holds the IMAP server address.
type Config struct {
	Host string
	Port int
	TLS  bool
}

// Provider implements out.MailboxProvider over IMAP.
type Provider struct {
	addr     string
	tls      bool
	username string
	password string
}

// NewProvider creates an IMAP provider for one account. No connection is
// made until FetchRecent.
func NewProvider(cfg Config, username, password string) (*Provider, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("imap host is not configured")
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("imap username and password are required")
	}
	port := cfg.Port
	if port == 0 {
		port = 993
	}
	return &Provider{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		tls:      cfg.TLS,
		username: username,
		password: password,
	}, nil
}

func (p *Provider) Name() domain.MailProvider {
	return domain.MailProviderIMAP
}

func (p *Provider) connect() (*imapclient.Client, error) {
	var (
		client *imapclient.Client
		err    error
	)
	if p.tls {
		client, err = imapclient.DialTLS(p.addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(p.addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", p.addr, err)
	}

	if err := client.Login(p.username, p.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authentication failed for %s: %w", p.username, err)
	}
	return client, nil
}

// FetchRecent returns the newest count INBOX messages, newest first.
func (p *Provider) FetchRecent(ctx context.Context, count int) ([]*domain.ConnectedEmail, error) {
	client, err := p.connect()
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	// imapclient commands are not context aware; closing the connection
	// unblocks any pending Wait.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = client.Close()
		case <-done:
		}
	}()

	selected, err := client.Select("INBOX", &imap.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	total := selected.NumMessages
	if total == 0 || count <= 0 {
		return []*domain.ConnectedEmail{}, nil
	}
	start := uint32(1)
	if total > uint32(count) {
		start = total - uint32(count) + 1
	}

	var seqSet imap.SeqSet
	seqSet.AddRange(start, total)

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(seqSet, &imap.FetchOptions{
		Envelope:    true,
		Flags:       true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	var emails []*domain.ConnectedEmail
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			continue
		}
		emails = append(emails, toConnectedEmail(buf.UID, buf.Envelope, buf.Flags, buf.FindBodySection(bodySection)))
	}

	if err := fetchCmd.Close(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	// Sequence order is oldest first.
	for i, j := 0, len(emails)-1; i < j; i, j = i+1, j-1 {
		emails[i], emails[j] = emails[j], emails[i]
	}
	return emails, nil
}

func toConnectedEmail(uid imap.UID, env *imap.Envelope, flags []imap.Flag, raw []byte) *domain.ConnectedEmail {
	email := &domain.ConnectedEmail{
		ID:      "imap-" + strconv.FormatUint(uint64(uid), 10),
		Subject: defaultSubject,
		From:    defaultSender,
	}

	if env != nil {
		if env.Subject != "" {
			email.Subject = env.Subject
		}
		if len(env.From) > 0 {
			email.From = formatAddress(env.From[0])
		}
		if !env.Date.IsZero() {
			email.Date = env.Date.Format(time.RFC1123Z)
		}
	}

	for _, f := range flags {
		if f == imap.FlagFlagged {
			email.Important = true
		}
	}

	if raw != nil {
		text, html := parseMIMEBody(raw)
		switch {
		case text != "":
			email.Body = text
		case html != "":
			if converted, err := html2text.FromString(html, html2text.Options{OmitLinks: true, TextOnly: true}); err == nil {
				email.Body = converted
			} else {
				email.Body = html
			}
		}
	}
	email.Preview = preview(email.Body)

	return email
}

func formatAddress(addr imap.Address) string {
	if addr.Name != "" {
		return fmt.Sprintf("%s <%s>", addr.Name, addr.Addr())
	}
	return addr.Addr()
}

// parseMIMEBody returns the first text/plain and text/html parts of raw.
func parseMIMEBody(raw []byte) (textBody, htmlBody string) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw), ""
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") && textBody == "":
			textBody = string(body)
		case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
			htmlBody = string(body)
		}
	}

	return textBody, htmlBody
}

func preview(body string) string {
	collapsed := strings.Join(strings.Fields(body), " ")
	runes := []rune(collapsed)
	if len(runes) <= previewLength {
		return collapsed
	}
	return string(runes[:previewLength]) + "..."
}
