package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/corgadogabriel/portfolio-api/internal/client"
	"github.com/corgadogabriel/portfolio-api/internal/version"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "portfolioctl",
	Short: "Terminal client for the portfolio contact API",
	Long: `portfolioctl talks to the portfolio backend from the terminal.
Use it to send a contact inquiry without opening the site, or to check
that a deployment is alive.`,
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a contact inquiry",
	Long: `Submit a contact inquiry through the same pipeline the site's form uses.

Example:
  portfolioctl send --first Ada --last Lovelace \
    --email ada@example.com --message "Interested in your availability for Q4."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		first, _ := cmd.Flags().GetString("first")
		last, _ := cmd.Flags().GetString("last")
		email, _ := cmd.Flags().GetString("email")
		message, _ := cmd.Flags().GetString("message")

		form := client.New(strings.TrimRight(serverURL, "/") + "/contact")
		defer form.Close()

		form.UpdateField(client.FieldFirst, first)
		form.UpdateField(client.FieldLast, last)
		form.UpdateField(client.FieldEmail, email)
		form.UpdateField(client.FieldMessage, message)

		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Sending your message..."
		s.Start()

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()
		err := form.Submit(ctx)
		s.Stop()

		if err != nil {
			return err
		}

		fmt.Println("Message sent. Thanks for reaching out!")
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is up",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/healthz")
		if err != nil {
			return fmt.Errorf("backend unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("backend unhealthy: HTTP %d", resp.StatusCode)
		}
		fmt.Println("Backend is up.")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the portfolio backend")

	sendCmd.Flags().String("first", "", "Your first name")
	sendCmd.Flags().String("last", "", "Your last name")
	sendCmd.Flags().String("email", "", "Your email address")
	sendCmd.Flags().String("message", "", "The message to send")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
