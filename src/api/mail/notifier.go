package mail

import (
	"fmt"
	"html"

	"github.com/da-upm/participa/src/api/types"
)

// Notifier renders and sends the "draft approved" and "draft rejected"
// notifications.
type Notifier struct {
	sender  Sender
	baseURL string
}

func NewNotifier(sender Sender, baseURL string) *Notifier {
	return &Notifier{sender: sender, baseURL: baseURL}
}

func (n *Notifier) DraftApproved(user types.User, p types.Proposal) error {
	subject := "Tu propuesta ha sido publicada"
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Tu propuesta <b>%s</b> ha sido revisada y publicada. "+
			"A partir de ahora el resto de la comunidad universitaria puede apoyarla.</p>"+
			"<p><a href=%q>Ver la propuesta</a></p>"+
			"<p>— Participa</p>",
		html.EscapeString(user.Name),
		html.EscapeString(p.Title),
		fmt.Sprintf("%s/proposals/%s", n.baseURL, p.ID),
	)
	return n.sender.Send(user.Email, subject, body)
}

func (n *Notifier) DraftRejected(user types.User, draftTitle, reason string) error {
	subject := "Tu propuesta no ha sido publicada"
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Tu propuesta <b>%s</b> no ha podido ser publicada.</p>"+
			"<p>Motivo:</p><blockquote>%s</blockquote>"+
			"<p>Puedes enviar una nueva propuesta cuando quieras.</p>"+
			"<p>— Participa</p>",
		html.EscapeString(user.Name),
		html.EscapeString(draftTitle),
		reason,
	)
	return n.sender.Send(user.Email, subject, body)
}
