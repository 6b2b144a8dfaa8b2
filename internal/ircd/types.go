package ircd

import (
	"net"
	"time"

	"github.com/google/uuid"
)

// outboundBuffer is the number of lines a slow client may lag behind
// before further lines to it are dropped.
const outboundBuffer = 256

// Client is the connection half of a user: its stable identifier, the
// peer host and the queue drained by the writer goroutine.
type Client struct {
	ID   string
	Host string
	Out  chan string // outbound lines, CRLF included, written by the writer goroutine
}

func NewClient(conn net.Conn) *Client {
	host := "unknown"
	if conn != nil && conn.RemoteAddr() != nil {
		host = conn.RemoteAddr().String()
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}
	return &Client{
		ID:   uuid.NewString(),
		Host: host,
		Out:  make(chan string, outboundBuffer),
	}
}

type EventType int

const (
	EventConnect EventType = iota
	EventLine
	EventDisconnect
)

func (t EventType) String() string {
	switch t {
	case EventConnect:
		return "connect"
	case EventLine:
		return "line"
	case EventDisconnect:
		return "disconnect"
	}
	return "unknown"
}

type Event struct {
	Type      EventType
	Client    *Client
	Line      string     // one framed command line, EventLine only
	Reason    string     // why the connection ended, EventDisconnect only
	ReplyChan chan error // used by connect to ack admission
}

// Options is the server metadata and policy the registry works with.
type Options struct {
	Name       string
	Version    string
	Password   string            // connection password, empty when none is required
	MOTD       string            // message of the day, lines separated by \n
	Operators  map[string][]byte // operator name -> bcrypt hash of the password
	MaxClients int
	Created    time.Time
}

func (o *Options) setDefaults() {
	if o.Name == "" {
		o.Name = "ircserv"
	}
	if o.Version == "" {
		o.Version = "ircserv-1.0"
	}
	if o.MaxClients <= 0 {
		o.MaxClients = 128
	}
	if o.Created.IsZero() {
		o.Created = time.Now()
	}
	if o.Operators == nil {
		o.Operators = map[string][]byte{}
	}
}

var (
	ErrServerFull = errorString("server is full")
)

type errorString string

func (e errorString) Error() string { return string(e) }
