package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

// bcryptGenerate is swappable so the hash-password command can be tested
// without paying the bcrypt cost.
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	rootCmd := &cobra.Command{
		Use:   "walletd-cli",
		Short: "walletd CLI tool",
		Long:  `A command line interface for interacting with the walletd API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the walletd API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("WALLETD_TOKEN"), "Bearer token (defaults to WALLETD_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		registerCmd(),
		loginCmd(),
		balanceCmd(),
		depositCmd(),
		withdrawCmd(),
		transferCmd(),
		transactionsCmd(),
		reverseCmd(),
		hashPasswordCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func registerCmd() *cobra.Command {
	var firstName, lastName string

	cmd := &cobra.Command{
		Use:   "register <email> <password>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doJSON(http.MethodPost, "/api/v1/auth/register", map[string]string{
				"email":     args[0],
				"password":  args[1],
				"firstName": firstName,
				"lastName":  lastName,
			})
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	return cmd
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Authenticate and print an access token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doJSON(http.MethodPost, "/api/v1/auth/login", map[string]string{
				"email":    args[0],
				"password": args[1],
			})
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current wallet balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doJSON(http.MethodGet, "/api/v1/wallet", nil)
		},
	}
}

func depositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit funds into the wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doJSON(http.MethodPost, "/api/v1/wallet/deposit", map[string]string{"amount": args[0]})
		},
	}
}

func withdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Withdraw funds from the wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doJSON(http.MethodPost, "/api/v1/wallet/withdraw", map[string]string{"amount": args[0]})
		},
	}
}

func transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <receiver-email> <amount>",
		Short: "Transfer funds to another user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doJSON(http.MethodPost, "/api/v1/wallet/transfer", map[string]string{
				"receiverEmail": args[0],
				"amount":        args[1],
			})
		},
	}
}

func transactionsCmd() *cobra.Command {
	var (
		txType, status, search string
		page, limit            int
		all                    bool
	)

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transaction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if txType != "" {
				q.Set("type", txType)
			}
			if status != "" {
				q.Set("status", status)
			}
			if search != "" {
				q.Set("search", search)
			}
			q.Set("page", strconv.Itoa(page))
			q.Set("limit", strconv.Itoa(limit))

			path := "/api/v1/wallet/transactions"
			if all {
				path = "/api/v1/transactions/"
			}
			return doJSON(http.MethodGet, path+"?"+q.Encode(), nil)
		},
	}

	cmd.Flags().StringVar(&txType, "type", "", "Filter by type (deposit, withdrawal, transfer, reversal)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (completed, reversed, failed)")
	cmd.Flags().StringVar(&search, "search", "", "Filter by user search term (admin listing only)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "Page size")
	cmd.Flags().BoolVar(&all, "all", false, "List across all wallets (admin only)")
	return cmd
}

func reverseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <transaction-id>",
		Short: "Reverse a completed transaction (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doJSON(http.MethodPost, "/api/v1/transactions/"+args[0]+"/reverse", nil)
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for seeding users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

// doJSON issues a request against the API and pretty-prints the JSON body.
// Non-2xx responses still print the body so error payloads stay visible.
func doJSON(method, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		fmt.Println(string(raw))
	} else {
		printJSON(parsed)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%+v\n", v)
		return
	}
	fmt.Println(string(data))
}
