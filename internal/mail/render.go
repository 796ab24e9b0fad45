package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

//go:embed templates
var templatesFS embed.FS

// LogoName is the content ID of the inline logo.
const LogoName = "logo.png"

var (
	activationText = texttemplate.Must(texttemplate.ParseFS(templatesFS, "templates/activation.txt"))
	activationHTML = htmltemplate.Must(htmltemplate.ParseFS(templatesFS, "templates/activation.html"))
)

// Activation holds the data for an account activation email.
type Activation struct {
	To       string
	Name     string
	Site     string
	SiteURL  string
	Token    string
	ValidFor time.Duration
	Logo     []byte // PNG, optional
}

// ActivationLink returns the public activation URL for token.
func ActivationLink(siteURL, token string) string {
	return strings.TrimRight(siteURL, "/") + "/activate/" + token + "/"
}

// RenderActivation builds the activation email.
func RenderActivation(a Activation) (Message, error) {
	data := struct {
		Name     string
		Site     string
		Link     string
		ValidFor string
		HasLogo  bool
		LogoName string
	}{
		Name:     a.Name,
		Site:     a.Site,
		Link:     ActivationLink(a.SiteURL, a.Token),
		ValidFor: humanDuration(a.ValidFor),
		HasLogo:  len(a.Logo) > 0,
		LogoName: LogoName,
	}

	var text, html bytes.Buffer
	if err := activationText.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("rendering text body: %w", err)
	}
	if err := activationHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("rendering html body: %w", err)
	}

	msg := Message{
		To:      a.To,
		Subject: "Activate your " + a.Site + " account",
		Text:    text.String(),
		HTML:    html.String(),
	}
	if data.HasLogo {
		msg.Inline = []Inline{{Name: LogoName, Data: a.Logo}}
	}
	return msg, nil
}

func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return d.String()
}
