package email

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapturing(cfg SMTPConfig) (*EmailServiceImpl, *[]string) {
	s := NewEmailService(cfg, zerolog.Nop()).(*EmailServiceImpl)
	var sent []string
	s.send = func(to, message string) error {
		sent = append(sent, to+"\n"+message)
		return nil
	}
	return s, &sent
}

func TestSendCancellationNotice(t *testing.T) {
	s, sent := newCapturing(SMTPConfig{Host: "smtp.test", Port: 587, Username: "u", Password: "p", FromName: "UniConsult", FromEmail: "no-reply@uni.test"})

	err := s.SendCancellationNotice(CancellationNotice{
		ToEmail:     "ada@uni.test",
		ToName:      "Dr. Ada",
		CancelledBy: "student",
		With:        "Sam <script>",
		Datetime:    time.Date(2030, 3, 4, 10, 30, 0, 0, time.UTC),
		Reason:      "exam clash",
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	msg := (*sent)[0]
	assert.Contains(t, msg, "ada@uni.test\n")
	assert.Contains(t, msg, "From: UniConsult <no-reply@uni.test>\r\n")
	assert.Contains(t, msg, "Subject: Consultation cancelled\r\n")
	assert.Contains(t, msg, "Mon 04 Mar 2030 10:30 UTC")
	assert.Contains(t, msg, "exam clash")
	assert.Contains(t, msg, "Sam &lt;script&gt;")
}

func TestUnconfiguredSMTPOnlyLogs(t *testing.T) {
	s, sent := newCapturing(SMTPConfig{})

	require.NoError(t, s.SendBookingNotice(BookingNotice{ToEmail: "a@b.c", ToName: "A", Student: "S", Datetime: time.Now()}))
	assert.Empty(t, *sent)
}
