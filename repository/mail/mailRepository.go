package mailrepo

import "context"

type Message struct {
	To      string
	Subject string
	Body    string
}

// Repo delivers transactional email. The HTTP implementation talks to an
// external mail API; the log implementation just records the message, which
// is enough for development and tests.
type Repo interface {
	Send(ctx context.Context, msg Message) error
}
