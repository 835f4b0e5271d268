package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/events"
)

func matchesCmd(c *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "matches",
		Short: "List your matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := c.Matches.ListMatches(ctx, &api.Empty{})
			if err != nil {
				return err
			}
			return c.print(resp)
		},
	}
}

func messagesCmd(c *Client) *cobra.Command {
	var (
		req  api.ListMessagesRequest
		page string
	)
	cmd := &cobra.Command{
		Use:   "messages <match-id>",
		Short: "Show a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			req.MatchID = args[0]
			if page != "" {
				req.PageToken = &page
			}
			resp, err := c.Matches.ListMessages(ctx, &req)
			if err != nil {
				return err
			}
			for _, m := range resp.Messages {
				fmt.Fprintf(c.out, "[%s] %s: %s\n", time.UnixMilli(m.CreatedAt).Format(time.Kitchen), m.SenderID, m.Body)
			}
			if resp.NextPageToken != nil {
				fmt.Fprintf(c.out, "more: --page %s\n", *resp.NextPageToken)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "page size")
	cmd.Flags().StringVar(&page, "page", "", "page token from a previous call")
	return cmd
}

func sendCmd(c *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "send <match-id> <message...>",
		Short: "Send a message to a match",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.Matches.SendMessage(ctx, &api.SendMessageRequest{
				MatchID: args[0],
				Body:    strings.Join(args[1:], " "),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, "sent")
			return nil
		},
	}
}

func watchCmd(c *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream new matches and messages until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			stream, err := c.Matches.Subscribe(ctx, &api.SubscribeRequest{})
			if err != nil {
				return err
			}
			for {
				ev, err := stream.Recv()
				if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
					return nil
				}
				if err != nil {
					return err
				}
				printEvent(c, ev)
			}
		},
	}
}

func printEvent(c *Client, ev *events.Event) {
	switch {
	case ev.Match != nil:
		fmt.Fprintf(c.out, "new match with %s (%s)\n", ev.Match.Name, ev.Match.MatchID)
	case ev.Message != nil:
		fmt.Fprintf(c.out, "%s in %s: %s\n", ev.Message.SenderID, ev.Message.MatchID, ev.Message.Body)
	default:
		fmt.Fprintf(c.out, "%s\n", ev.Kind)
	}
}
