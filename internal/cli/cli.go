// Package cli is the spotme command line client. It talks to the gRPC API
// and keeps the bearer token in a file between invocations.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/rpc"
)

var errNotSignedIn = errors.New("not signed in, run `spotme signin` first")

// Client holds the connection and the API clients of one invocation.
type Client struct {
	Auth     *api.AuthClient
	Profile  *api.ProfileClient
	Discover *api.DiscoverClient
	Matches  *api.MatchesClient

	conn      *grpc.ClientConn
	cancel    context.CancelFunc
	tokenFile string
	token     string
	out       io.Writer
}

// Options configure the root command.
type Options struct {
	Addr      string
	TokenFile string
	Timeout   time.Duration
	// DialOptions replace the default insecure transport.
	DialOptions []grpc.DialOption
}

func defaultOptions() Options {
	addr := os.Getenv("SPOTME_ADDR")
	if addr == "" {
		addr = "127.0.0.1:50051"
	}
	tokenFile := os.Getenv("SPOTME_TOKEN_FILE")
	if tokenFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			tokenFile = filepath.Join(home, ".spotme", "token")
		} else {
			tokenFile = ".spotme-token"
		}
	}
	return Options{Addr: addr, TokenFile: tokenFile, Timeout: 15 * time.Second}
}

// NewRootCmd builds the spotme command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultOptions())
}

func newRootCmd(opts Options) *cobra.Command {
	c := &Client{}

	root := &cobra.Command{
		Use:           "spotme",
		Short:         "Find a gym partner from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.connect(cmd, opts)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.cancel != nil {
				c.cancel()
			}
			if c.conn != nil {
				return c.conn.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.Addr, "addr", opts.Addr, "gRPC server address")
	root.PersistentFlags().StringVar(&opts.TokenFile, "token-file", opts.TokenFile, "where the session token is kept")
	root.PersistentFlags().DurationVar(&opts.Timeout, "timeout", opts.Timeout, "per-call timeout")

	root.AddCommand(
		signUpCmd(c), signInCmd(c), signOutCmd(c),
		meCmd(c), onboardCmd(c), updateCmd(c), photoCmd(c), upgradeCmd(c),
		feedCmd(c), swipeCmd(c), likesCmd(c),
		matchesCmd(c), messagesCmd(c), sendCmd(c), watchCmd(c),
	)
	return root
}

func (c *Client) connect(cmd *cobra.Command, opts Options) error {
	dialOpts := opts.DialOptions
	if len(dialOpts) == 0 {
		dialOpts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(opts.Addr, dialOpts...)
	if err != nil {
		return fmt.Errorf("connect %s: %w", opts.Addr, err)
	}

	c.conn = conn
	c.Auth = api.NewAuthClient(conn)
	c.Profile = api.NewProfileClient(conn)
	c.Discover = api.NewDiscoverClient(conn)
	c.Matches = api.NewMatchesClient(conn)
	c.tokenFile = opts.TokenFile
	c.out = cmd.OutOrStdout()

	if data, err := os.ReadFile(opts.TokenFile); err == nil {
		c.token = strings.TrimSpace(string(data))
	}

	if opts.Timeout > 0 && cmd.Name() != "watch" {
		ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
		c.cancel = cancel
		cmd.SetContext(ctx)
	}
	return nil
}

// authed returns ctx carrying the saved token.
func (c *Client) authed(ctx context.Context) (context.Context, error) {
	if c.token == "" {
		return nil, errNotSignedIn
	}
	return rpc.WithToken(ctx, c.token), nil
}

func (c *Client) saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.tokenFile), 0o700); err != nil {
		return err
	}
	c.token = token
	return os.WriteFile(c.tokenFile, []byte(token+"\n"), 0o600)
}

func (c *Client) clearToken() error {
	c.token = ""
	if err := os.Remove(c.tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (c *Client) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
