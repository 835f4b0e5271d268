package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/oggyb/spotme/internal/api"
)

func meCmd(c *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.Profile.GetProfile(ctx, &api.Empty{})
			if err != nil {
				return err
			}
			return c.print(p)
		},
	}
}

func onboardCmd(c *Client) *cobra.Command {
	var req api.OnboardRequest
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Fill in your profile card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.Profile.CompleteOnboarding(ctx, &req)
			if err != nil {
				return err
			}
			return c.print(p)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "display name")
	f.IntVar(&req.Age, "age", 0, "age, 18 or older")
	f.StringVar(&req.Intent, "intent", "any", "partner, relationship, coach or any")
	f.StringVar(&req.Emoji, "emoji", "💪", "profile emoji")
	f.StringSliceVar(&req.Tags, "tags", nil, "up to 5 interests")
	f.StringVar(&req.Gym, "gym", "", "home gym")
	f.BoolVar(&req.GuestPass, "guest-pass", false, "can bring a guest")
	f.StringVar(&req.Bio, "bio", "", "short bio")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}

func updateCmd(c *Client) *cobra.Command {
	var (
		name, gym, intent, bio, emoji string
		age                           int
		tags                          []string
		guestPass                     bool
		lat, lng                      float64
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit your profile; only the flags you pass are changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}

			f := cmd.Flags()
			var req api.UpdateProfileRequest
			if f.Changed("name") {
				req.Name = &name
			}
			if f.Changed("age") {
				req.Age = &age
			}
			if f.Changed("gym") {
				req.Gym = &gym
			}
			if f.Changed("intent") {
				req.Intent = &intent
			}
			if f.Changed("bio") {
				req.Bio = &bio
			}
			if f.Changed("emoji") {
				req.Emoji = &emoji
			}
			if f.Changed("tags") {
				req.Tags = &tags
			}
			if f.Changed("guest-pass") {
				req.GuestPass = &guestPass
			}
			if f.Changed("lat") {
				req.Latitude = &lat
			}
			if f.Changed("lng") {
				req.Longitude = &lng
			}

			p, err := c.Profile.UpdateProfile(ctx, &req)
			if err != nil {
				return err
			}
			return c.print(p)
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "display name")
	f.IntVar(&age, "age", 0, "age")
	f.StringVar(&gym, "gym", "", "home gym")
	f.StringVar(&intent, "intent", "", "partner, relationship, coach or any")
	f.StringVar(&bio, "bio", "", "short bio")
	f.StringVar(&emoji, "emoji", "", "profile emoji")
	f.StringSliceVar(&tags, "tags", nil, "up to 5 interests")
	f.BoolVar(&guestPass, "guest-pass", false, "can bring a guest")
	f.Float64Var(&lat, "lat", 0, "latitude")
	f.Float64Var(&lng, "lng", 0, "longitude")
	return cmd
}

func photoCmd(c *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "photo <file>",
		Short: "Upload a profile photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			p, err := c.Profile.UploadPhoto(ctx, &api.UploadPhotoRequest{
				ContentType: http.DetectContentType(data),
				Data:        data,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, p.PhotoURL)
			return nil
		},
	}
}

func upgradeCmd(c *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade to Gold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.Profile.Upgrade(ctx, &api.Empty{})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "plan: %s, swipes: %d, super swipes: %d\n", p.PlanTier, p.SwipeCredits, p.SuperCredits)
			return nil
		},
	}
}
