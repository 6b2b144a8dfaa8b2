package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/andy6609/ircserv/internal/ircd"
)

const usage = "[host:port_network:password_network] <port> <password>"

// Network is the optional relay triple from the command line. It is parsed
// and reported but never dialed.
type Network struct {
	Host     string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	Password string
}

type Config struct {
	Host        string `validate:"required"`
	Port        int    `validate:"min=1,max=65535"`
	Password    string
	Network     *Network
	Name        string `validate:"required"`
	MOTD        string
	Operators   map[string][]byte // name -> bcrypt hash
	MaxClients  int `validate:"min=1"`
	MetricsAddr string
	LogFormat   string `validate:"oneof=console json"`
	Verbose     bool
}

var (
	ErrUsage       = errors.New("usage: ircserv [flags] " + usage)
	ErrNoOperators = errors.New("operator entry must be name:password")
)

var validate = validator.New()

func Flags(fileData map[string]any) []cli.Flag {
	// Env > config file > default
	src := func(key string, env ...string) cli.ValueSourceChain {
		chain := cli.ValueSourceChain{}
		for _, e := range env {
			chain.Chain = append(chain.Chain, cli.EnvVar(e))
		}
		if fileData != nil {
			chain.Chain = append(chain.Chain, &FileSource{data: fileData, key: key})
		}
		return chain
	}

	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "read settings from a yaml or toml file", Sources: cli.EnvVars("IRCSERV_CONFIG")},

		&cli.StringFlag{Name: "host", Value: "0.0.0.0", Usage: "address to listen on", Sources: src("host", "IRCSERV_HOST")},
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 6667, Usage: "port to listen on", Sources: src("port", "IRCSERV_PORT")},
		&cli.StringFlag{Name: "password", Usage: "connection password clients must send with PASS", Sources: src("password", "IRCSERV_PASSWORD")},
		&cli.StringFlag{Name: "network", Usage: "relay triple host:port:password", Sources: src("network", "IRCSERV_NETWORK")},

		&cli.StringFlag{Name: "name", Value: "ircserv", Usage: "server name used as reply prefix", Sources: src("name", "IRCSERV_NAME")},
		&cli.StringFlag{Name: "motd", Usage: "message of the day", Sources: src("motd", "IRCSERV_MOTD")},
		&cli.StringFlag{Name: "operators", Usage: "IRC operators as name:password|name:password", Sources: src("operators", "IRCSERV_OPERATORS")},
		&cli.IntFlag{Name: "max-clients", Value: 128, Usage: "maximum simultaneous connections", Sources: src("max-clients", "IRCSERV_MAX_CLIENTS")},

		&cli.StringFlag{Name: "metrics-addr", Value: ":9090", Usage: "prometheus listen address, empty to disable", Sources: src("metrics-addr", "IRCSERV_METRICS_ADDR")},
		&cli.StringFlag{Name: "log-format", Value: "console", Usage: "console or json", Sources: src("log-format", "IRCSERV_LOG_FORMAT")},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "log every command line", Sources: src("verbose", "IRCSERV_VERBOSE")},
	}
}

// FromCommand assembles and validates a Config from parsed flags and the
// positional arguments, which override the flags.
func FromCommand(cmd *cli.Command) (*Config, error) {
	cfg := &Config{
		Host:        cmd.String("host"),
		Port:        cmd.Int("port"),
		Password:    cmd.String("password"),
		Name:        cmd.String("name"),
		MOTD:        cmd.String("motd"),
		MaxClients:  cmd.Int("max-clients"),
		MetricsAddr: cmd.String("metrics-addr"),
		LogFormat:   cmd.String("log-format"),
		Verbose:     cmd.Bool("verbose"),
	}

	network := cmd.String("network")
	args := cmd.Args().Slice()
	switch len(args) {
	case 0:
	case 2, 3:
		if len(args) == 3 {
			network, args = args[0], args[1:]
		}
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w: bad port %q", ErrUsage, args[0])
		}
		cfg.Port, cfg.Password = port, args[1]
	default:
		return nil, ErrUsage
	}

	if network != "" {
		n, err := ParseNetwork(network)
		if err != nil {
			return nil, err
		}
		cfg.Network = n
	}

	ops, err := ParseOperators(cmd.String("operators"))
	if err != nil {
		return nil, err
	}
	cfg.Operators = ops

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func ParseNetwork(s string) (*Network, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: network must be host:port:password", ErrUsage)
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad network port %q", ErrUsage, parts[1])
	}
	return &Network{Host: parts[0], Port: port, Password: parts[2]}, nil
}

// ParseOperators reads "name:password|name:password" and keeps only bcrypt
// hashes of the passwords.
func ParseOperators(s string) (map[string][]byte, error) {
	ops := make(map[string][]byte)
	if strings.TrimSpace(s) == "" {
		return ops, nil
	}
	for _, entry := range strings.Split(s, "|") {
		name, pass, ok := strings.Cut(entry, ":")
		if !ok || name == "" || pass == "" {
			return nil, fmt.Errorf("%w: %q", ErrNoOperators, entry)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash operator %s: %w", name, err)
		}
		ops[name] = hash
	}
	return ops, nil
}

// ListenAddr is host:port for the IRC listener.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServerOptions maps the configuration onto what the registry needs.
func (c *Config) ServerOptions(version string) ircd.Options {
	return ircd.Options{
		Name:       c.Name,
		Version:    version,
		Password:   c.Password,
		MOTD:       c.MOTD,
		Operators:  c.Operators,
		MaxClients: c.MaxClients,
	}
}

// ConfigPath finds --config/-c in args or IRCSERV_CONFIG, so the file can
// be read before the flags are declared.
func ConfigPath(args []string) string {
	if v := os.Getenv("IRCSERV_CONFIG"); v != "" {
		return v
	}
	for i, arg := range args {
		if (arg == "--config" || arg == "-c") && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
	}
	return ""
}
