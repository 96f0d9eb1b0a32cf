package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health", nil)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the registered players for a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players", url.Values{"tenant": {tenant}})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register [names]",
	Short: "Register players, comma-separated",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/players/register", url.Values{
			"tenant": {tenant},
			"names":  {args[0]},
		})
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the recorded matches for a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches", url.Values{"tenant": {tenant}, "format": {"text"}})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the statistics report for a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/report", url.Values{"tenant": {tenant}})
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics", nil)
	},
}

func performGetRequest(endpoint string, params url.Values) error {
	target := host + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	fmt.Printf("Making request to %s\n", target)

	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, form url.Values) error {
	target := host + endpoint
	fmt.Printf("Making request to %s\n", target)

	resp, err := http.PostForm(target, form)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
