package driver

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"goDBDriver/api"
	"goDBDriver/internal/logger"

	"github.com/sirupsen/logrus"
)

// URLPrefix is the scheme every connection URL starts with.
const URLPrefix = "godb://"

// Connection defaults.
const (
	DefaultPort     = 10000
	DefaultDatabase = "default"
)

// Connection property names returned by ConnParams.Properties.
const (
	PropertyHost   = "HOST"
	PropertyPort   = "PORT"
	PropertyDBName = "DBNAME"
)

// ConnParams is a parsed connection URL.
type ConnParams struct {
	Host     string
	Port     int
	Database string
	Options  map[string]string
}

// Embedded reports whether the URL names the in-process engine.
func (p ConnParams) Embedded() bool {
	return p.Host == ""
}

// Properties returns the connection properties of the URL.
func (p ConnParams) Properties() map[string]string {
	return map[string]string{
		PropertyHost:   p.Host,
		PropertyPort:   strconv.Itoa(p.Port),
		PropertyDBName: p.Database,
	}
}

// ParseURL parses godb://[host[:port]][/db][?opt=val&...].
func ParseURL(rawURL string) (ConnParams, error) {
	if !strings.HasPrefix(rawURL, URLPrefix) {
		return ConnParams{}, newError(InvalidArgument, "Invalid URL: %s, must start with %s", rawURL, URLPrefix)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ConnParams{}, wrapError(InvalidArgument, err, "Bad URL format: %v", err)
	}

	p := ConnParams{
		Host:     u.Hostname(),
		Port:     DefaultPort,
		Database: strings.Trim(u.Path, "/"),
		Options:  map[string]string{},
	}
	if port := u.Port(); port != "" {
		p.Port, err = strconv.Atoi(port)
		if err != nil {
			return ConnParams{}, wrapError(InvalidArgument, err, "Bad URL format: invalid port %q", port)
		}
	}
	if p.Database == "" {
		p.Database = DefaultDatabase
	}
	for key, values := range u.Query() {
		if len(values) > 0 {
			p.Options[key] = values[len(values)-1]
		}
	}
	return p, nil
}

type connectConfig struct {
	log     logger.Logger
	client  *http.Client
	options map[string]string
}

// ConnectOption configures Connect and NewSession.
type ConnectOption func(*connectConfig)

// WithLogger routes driver debug logging to l.
func WithLogger(l *logrus.Logger) ConnectOption {
	return func(c *connectConfig) {
		c.log = logger.Wrap(l)
	}
}

// WithHTTPClient sets the client used for remote engines.
func WithHTTPClient(client *http.Client) ConnectOption {
	return func(c *connectConfig) {
		c.client = client
	}
}

// WithSessionOption presets a session option.
func WithSessionOption(name, value string) ConnectOption {
	return func(c *connectConfig) {
		c.options[name] = value
	}
}

func newConnectConfig(opts []ConnectOption) *connectConfig {
	c := &connectConfig{
		log:     logger.Nop(),
		client:  http.DefaultClient,
		options: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens a session for the given URL. A URL without a host attaches
// to the process-wide embedded engine.
func Connect(ctx context.Context, rawURL string, opts ...ConnectOption) (*Session, error) {
	p, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	cfg := newConnectConfig(opts)

	var backend api.Backend
	if p.Embedded() {
		backend, err = embeddedBackend()
		if err != nil {
			return nil, wrapError(ExecutionFailure, err, "Could not start embedded engine: %v", err)
		}
	} else {
		base := "http://" + p.Host + ":" + strconv.Itoa(p.Port)
		remote := NewHTTPBackend(base, cfg.client)
		if _, err := remote.Info(ctx); err != nil {
			return nil, wrapError(ExecutionFailure, err, "Could not open connection to %s: %v", rawURL, err)
		}
		backend = remote
	}

	// URL options are applied first so explicit options win.
	merged := make([]ConnectOption, 0, len(p.Options)+len(opts))
	for key, value := range p.Options {
		merged = append(merged, WithSessionOption(key, value))
	}
	merged = append(merged, opts...)

	cfg.log.Debug("Connected", logger.Ctx{"url": rawURL, "embedded": p.Embedded()})
	return NewSession(backend, merged...), nil
}
