package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oggyb/spotme/internal/api"
)

func feedCmd(c *Client) *cobra.Command {
	var req api.LoadFeedRequest
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Load a fresh candidate feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := c.Discover.LoadFeed(ctx, &req)
			if err != nil {
				return err
			}
			return c.print(resp)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Intent, "intent", "", "only show this intent")
	f.IntVar(&req.AgeMin, "age-min", 0, "minimum age")
	f.IntVar(&req.AgeMax, "age-max", 0, "maximum age")
	f.Float64Var(&req.MaxDistanceKm, "max-km", 0, "maximum distance in km (Gold)")
	return cmd
}

func swipeCmd(c *Client) *cobra.Command {
	return &cobra.Command{
		Use:       "swipe <left|right|super>",
		Short:     "Swipe on the current card",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"left", "right", "super"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := c.Discover.Swipe(ctx, &api.SwipeRequest{Direction: args[0]})
			if err != nil {
				return err
			}

			switch resp.Result {
			case "matched":
				fmt.Fprintf(c.out, "It's a match with %s!\n", resp.Candidate.Name)
			case "liked":
				fmt.Fprintf(c.out, "liked %s\n", resp.Candidate.Name)
			default:
				fmt.Fprintf(c.out, "passed on %s\n", resp.Candidate.Name)
			}
			if resp.Next != nil {
				fmt.Fprintf(c.out, "next: %s, %d\n", resp.Next.Name, resp.Next.Age)
			} else {
				fmt.Fprintln(c.out, "feed exhausted, run `spotme feed` to reload")
			}
			fmt.Fprintf(c.out, "swipes left: %d, super swipes left: %d\n", resp.SwipeCredits, resp.SuperCredits)
			return nil
		},
	}
}

func likesCmd(c *Client) *cobra.Command {
	var (
		req   api.ListLikesRequest
		page  string
		count bool
	)
	cmd := &cobra.Command{
		Use:   "likes",
		Short: "See who liked you (Gold), or just how many",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			if count {
				resp, err := c.Discover.CountLikes(ctx, &api.Empty{})
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%d people liked you\n", resp.Count)
				return nil
			}
			if page != "" {
				req.PageToken = &page
			}
			resp, err := c.Discover.ListLikes(ctx, &req)
			if err != nil {
				return err
			}
			return c.print(resp)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&count, "count", false, "only print the number of likes")
	f.BoolVar(&req.OnlyNew, "new", false, "hide people you already liked back")
	f.IntVar(&req.Limit, "limit", 0, "page size")
	f.StringVar(&page, "page", "", "page token from a previous call")
	return cmd
}
