package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/client"

	"github.com/spf13/cobra"
)

var (
	apiURL   string
	asJSON   bool
	userFlag uint
)

func addClientCommands(root *cobra.Command) {
	root.PersistentFlags().StringVar(&apiURL, "api", client.DefaultBaseURL, "base URL of a running API server")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print the raw JSON response")

	greet := &cobra.Command{
		Use:   "greet [user-id]",
		Short: "Greet a user and show their profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			resp, err := newClient().Greet(cmd.Context(), id)
			if err != nil {
				return err
			}
			return show(cmd, resp, resp.Message)
		},
	}

	mood := &cobra.Command{
		Use:   "mood [user-id] [mood]",
		Short: "Log a mood, or show mood stats when no mood is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			c := newClient()
			var resp *client.MoodResponse
			if len(args) == 2 {
				resp, err = c.LogMood(cmd.Context(), id, args[1])
			} else {
				resp, err = c.MoodStats(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return show(cmd, resp, resp.Message)
		},
	}

	cgm := &cobra.Command{
		Use:   "cgm [user-id] [reading|generate]",
		Short: "Log or simulate a glucose reading, or show glucose stats",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			c := newClient()
			var resp *client.GlucoseResponse
			switch {
			case len(args) == 1:
				resp, err = c.GlucoseStats(cmd.Context(), id)
			case args[1] == "generate":
				resp, err = c.GenerateGlucose(cmd.Context(), id)
			default:
				reading, convErr := strconv.Atoi(args[1])
				if convErr != nil {
					return fmt.Errorf("reading must be a whole number: %q", args[1])
				}
				resp, err = c.LogGlucose(cmd.Context(), id, reading)
			}
			if err != nil {
				return err
			}
			return show(cmd, resp, resp.Message)
		},
	}

	food := &cobra.Command{
		Use:   "food [user-id] [description...]",
		Short: "Log a meal, or show nutrition stats when no description is given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			c := newClient()
			var resp *client.FoodResponse
			if len(args) > 1 {
				resp, err = c.LogFood(cmd.Context(), id, strings.Join(args[1:], " "))
			} else {
				resp, err = c.FoodStats(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return show(cmd, resp, resp.Message)
		},
	}

	var (
		latest       bool
		requirements string
	)
	mealPlan := &cobra.Command{
		Use:   "meal-plan [user-id]",
		Short: "Generate a meal plan, or fetch the latest one with --latest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			c := newClient()
			var resp *client.MealPlanResponse
			if latest {
				resp, err = c.LatestMealPlan(cmd.Context(), id)
			} else {
				resp, err = c.GenerateMealPlan(cmd.Context(), id, requirements)
			}
			if err != nil {
				return err
			}
			return show(cmd, resp, resp.Message)
		},
	}
	mealPlan.Flags().BoolVar(&latest, "latest", false, "fetch the most recent saved plan")
	mealPlan.Flags().StringVar(&requirements, "requirements", "", `special requirements for the new plan, e.g. "low sodium"`)

	var screen string
	ask := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask the general assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var current map[string]any
			if screen != "" {
				current = map[string]any{"screen": screen}
			}
			resp, err := newClient().Ask(cmd.Context(), userFlag, strings.Join(args, " "), current)
			if err != nil {
				return err
			}
			return show(cmd, resp, resp.Message+"\n\n"+resp.NavigationSuggestion)
		},
	}
	ask.Flags().UintVar(&userFlag, "user", 0, "user id, needed for health score questions")
	ask.Flags().StringVar(&screen, "screen", "", "screen the question was asked from")

	summary := &cobra.Command{
		Use:   "summary [user-id]",
		Short: "Show the combined mood, glucose, nutrition and meal plan summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			resp, err := newClient().Summary(cmd.Context(), id)
			if err != nil {
				return err
			}
			text := strings.Join([]string{
				resp.MoodSummary.Message,
				resp.CGMSummary.Message,
				resp.NutritionSummary.Message,
				resp.LatestMealPlan.Message,
			}, "\n")
			return show(cmd, resp, text)
		},
	}

	moods := &cobra.Command{
		Use:   "moods",
		Short: "List the moods the tracker accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().AvailableMoods(cmd.Context())
			if err != nil {
				return err
			}
			return show(cmd, resp, strings.Join(resp.Moods, ", "))
		},
	}

	var limit int
	alerts := &cobra.Command{
		Use:   "alerts [user-id]",
		Short: "List recent glucose alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			resp, err := newClient().Alerts(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			lines := make([]string, 0, len(resp.Alerts))
			for _, a := range resp.Alerts {
				lines = append(lines, fmt.Sprintf("%s [%s] %s", a.CreatedAt.Format("2006-01-02 15:04"), a.Type, a.Message))
			}
			if len(lines) == 0 {
				lines = append(lines, "No alerts.")
			}
			return show(cmd, resp, strings.Join(lines, "\n"))
		},
	}
	alerts.Flags().IntVar(&limit, "limit", 0, "maximum number of alerts")

	root.AddCommand(greet, mood, cgm, food, mealPlan, ask, summary, moods, alerts)
}

func newClient() *client.Client {
	return client.New(apiURL, client.WithLogger(logger))
}

func parseUserID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("user id must be a positive number: %q", s)
	}
	return uint(id), nil
}

// show prints text, or with --json the server's response body indented.
func show(cmd *cobra.Command, resp any, text string) error {
	out := cmd.OutOrStdout()
	if asJSON {
		if r, ok := resp.(interface{ RawJSON() json.RawMessage }); ok && len(r.RawJSON()) > 0 {
			var buf bytes.Buffer
			if err := json.Indent(&buf, r.RawJSON(), "", "  "); err != nil {
				return err
			}
			buf.WriteByte('\n')
			_, err := out.Write(buf.Bytes())
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	_, err := fmt.Fprintln(out, text)
	return err
}
