package service

import (
	"fmt"

	"hikesoc/access-api/internal/model"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// SendJoinLinkMail mails an email-link token as a clickable join
// link. The link hits POST /join on the frontend side.
func SendJoinLinkMail(t *model.AccessToken) error {
	link := fmt.Sprintf("https://%v/join?token=%v", viper.GetString("host.domain"), t.Token)

	m := newMessage(t.Contact, "Your hiking club WhatsApp invite")
	m.SetBody("text/html", fmt.Sprintf(
		"Hi!<br><br>Click <a href='%v'>here</a> to join the club WhatsApp group."+
			"<br><br>The link is valid for 24 hours and works once.", link))

	return dial().DialAndSend(m)
}

// SendVerificationCodeMail mails a 6-digit code for the typed-in
// verification flow.
func SendVerificationCodeMail(t *model.AccessToken) error {
	m := newMessage(t.Contact, "Your hiking club verification code")
	m.SetBody("text/html", fmt.Sprintf(
		"Your verification code is: <b>%v</b><br><br>"+
			"Enter it on the website to get the WhatsApp invite. It expires in %v minutes.",
		t.Token, int(viper.GetDuration("tokens.six_digit_ttl").Minutes())))

	return dial().DialAndSend(m)
}

func newMessage(to, subject string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", viper.GetString("mail.sender_address"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	return m
}

func dial() *gomail.Dialer {
	return gomail.NewDialer(
		viper.GetString("mail.host"),
		viper.GetInt("mail.port"),
		viper.GetString("mail.sender_address"),
		viper.GetString("mail.password"),
	)
}
