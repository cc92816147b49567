package mailer

type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendBookingConfirmation(email, bookingID, routeName, seatLabel string, totalAmount int64) error
}
