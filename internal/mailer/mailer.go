package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/invoice"
	"backend/internal/models"
)

// Result is the dispatch outcome. A skipped dispatch is expected behavior
// when the transport is unconfigured, not a failure.
type Result string

const (
	ResultSent    Result = "sent"
	ResultSkipped Result = "skipped"
	ResultFailed  Result = "failed"
)

const bodyTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Sayın {{.CustomerName}},</h2>
  <p>Siparişiniz alınmıştır. Faturanız bu e-postanın ekindedir.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><b>Sipariş No</b></td><td>{{.OrderNumber}}</td></tr>
    <tr><td><b>Tarih</b></td><td>{{.Date}}</td></tr>
    <tr><td><b>Toplam (KDV dahil)</b></td><td>{{.Total}}</td></tr>
  </table>
  <p>Bizi tercih ettiğiniz için teşekkür ederiz.</p>
</body>
</html>`

var bodyTmpl = template.Must(template.New("invoice").Parse(bodyTemplate))

type bodyData struct {
	CustomerName string
	OrderNumber  string
	Date         string
	Total        string
}

// Dispatcher attempts one-shot invoice delivery over SMTP. Delivery is
// never retried and no delivery state is written back to the order.
type Dispatcher struct {
	cfg config.SMTPConfig
	log *zap.Logger

	// send is swapped out in tests.
	send func(to string, msg []byte) error
}

func New(cfg config.SMTPConfig, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{cfg: cfg, log: log}
	d.send = d.sendSMTP
	return d
}

// SendInvoice emails the rendered invoice to the order's customer. When the
// transport is unconfigured, or the order has no customer email, the result
// is ResultSkipped with a nil error.
func (d *Dispatcher) SendInvoice(ctx context.Context, order models.Order, pdf []byte) (Result, error) {
	if !d.cfg.Configured() {
		d.log.Info("mail transport not configured, invoice email skipped",
			zap.String("orderNumber", order.OrderNumber))
		return ResultSkipped, nil
	}

	to := strings.TrimSpace(order.Customer.Email)
	if to == "" {
		d.log.Info("order has no customer email, invoice email skipped",
			zap.String("orderNumber", order.OrderNumber))
		return ResultSkipped, nil
	}

	if err := ctx.Err(); err != nil {
		return ResultFailed, err
	}

	grandTotal := invoice.GrandTotalAmount(order.Total)

	var body bytes.Buffer
	err := bodyTmpl.Execute(&body, bodyData{
		CustomerName: order.Customer.FullName,
		OrderNumber:  order.OrderNumber,
		Date:         order.CreatedAt.Format("02/01/2006 15:04"),
		Total:        grandTotal,
	})
	if err != nil {
		return ResultFailed, err
	}

	subject := "Faturanız - " + order.OrderNumber
	attachmentName := "fatura-" + order.OrderNumber + ".pdf"

	msg, err := buildMessage(d.cfg.From, to, subject, body.Bytes(), attachmentName, pdf)
	if err != nil {
		return ResultFailed, err
	}

	if err := d.send(to, msg); err != nil {
		return ResultFailed, err
	}

	return ResultSent, nil
}

func (d *Dispatcher) sendSMTP(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	auth := smtp.PlainAuth("", d.cfg.User, d.cfg.Pass, d.cfg.Host)

	if !d.cfg.Secure {
		return smtp.SendMail(addr, auth, d.cfg.From, []string{to}, msg)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: d.cfg.Host})
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, d.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(d.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

// buildMessage assembles a multipart/mixed MIME message with an HTML body
// and the invoice PDF attached as base64.
func buildMessage(from, to, subject string, htmlBody []byte, attachmentName string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMessage-ID: <%s@invoices>\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%q\r\n\r\n",
		from, to, subject, uuid.NewString(), writer.Boundary(),
	)

	htmlPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write(htmlBody); err != nil {
		return nil, err
	}

	pdfPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/pdf"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", attachmentName)},
	})
	if err != nil {
		return nil, err
	}
	if err := writeBase64(pdfPart, attachment); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return append([]byte(headers), buf.Bytes()...), nil
}

func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	// 76-column lines per RFC 2045.
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(w, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := fmt.Fprintf(w, "%s\r\n", encoded)
	return err
}
