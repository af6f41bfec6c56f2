package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"cyberintel/internal/processor"
)

// RecipientLister 提供收件人列表（由用户注册表实现）
type RecipientLister interface {
	ListEmails() ([]string, error)
}

// Mailer 把新观察到的条目打包成纯文本摘要邮件发给全部注册用户。
// 不做重试：发送失败只记录日志，下一批新条目自然是下一封邮件
type Mailer struct {
	addr       string
	auth       smtp.Auth
	from       string
	recipients RecipientLister

	// 可替换的发送函数，测试时注入
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(host string, port int, username, password, from string, recipients RecipientLister) *Mailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Mailer{
		addr:       fmt.Sprintf("%s:%d", host, port),
		auth:       auth,
		from:       from,
		recipients: recipients,
		send:       smtp.SendMail,
	}
}

func (m *Mailer) Notify(_ context.Context, category string, items []processor.Item) error {
	if len(items) == 0 {
		return nil
	}

	to, err := m.recipients.ListEmails()
	if err != nil {
		return fmt.Errorf("notify: list recipients: %w", err)
	}
	if len(to) == 0 {
		return nil
	}

	msg := buildMessage(m.from, to, category, items)
	if err := m.send(m.addr, m.auth, m.from, to, msg); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}

	log.Printf("notify: mailed %d new %s items to %d recipients", len(items), category, len(to))
	return nil
}

func buildMessage(from string, to []string, category string, items []processor.Item) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: [CyberIntel] %d new %s stories\r\n", len(items), category)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	for _, it := range items {
		title := it.Title
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(&b, "- %s\r\n  %s\r\n  %s | %s\r\n\r\n", title, it.Link, it.Source, it.Published)
	}
	return []byte(b.String())
}

// Noop 在未配置 SMTP 时使用，只在日志里留一行
type Noop struct{}

func (Noop) Notify(_ context.Context, category string, items []processor.Item) error {
	if len(items) > 0 {
		log.Printf("notify: %d new %s items (mail disabled)", len(items), category)
	}
	return nil
}
