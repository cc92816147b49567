package mailer

import (
	"fmt"

	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

// DevMailer logs emails instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer { return &DevMailer{} }

func (d *DevMailer) Send(toEmail, toName, subject, text, _ string) (string, error) {
	logger.Info("dev mailer: email not sent",
		"to", toEmail,
		"name", toName,
		"subject", subject,
		"text", text,
	)
	return "dev-message", nil
}

func (d *DevMailer) SendBookingConfirmation(email, bookingID, routeName, seatLabel string, totalAmount int64) error {
	_, err := d.Send(email, "",
		"Your Hotpoint booking is confirmed",
		fmt.Sprintf("Booking %s confirmed: %s, seat %s, total %d", bookingID, routeName, seatLabel, totalAmount),
		"")
	return err
}
