package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	baseURL    string
	timeout    time.Duration
	adminToken string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tapcore-cli",
		Short: "Tapcore CLI tool",
		Long:  `A command line interface for interacting with the Tapcore API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Tapcore API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&adminToken, "token", "", "Admin JWT for review operations")

	// Payment commands
	paymentCmd := &cobra.Command{
		Use:   "payment",
		Short: "Payment operations",
	}

	paymentCmd.AddCommand(&cobra.Command{
		Use:   "submit <user-id> <tx-hash> <tier> <amount>",
		Short: "Submit a verified subscription payment",
		Args:  cobra.ExactArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/payments", map[string]any{
				"user_id":   args[0],
				"tx_hash":   args[1],
				"tier_name": args[2],
				"amount":    args[3],
			})
		},
	})

	paymentCmd.AddCommand(&cobra.Command{
		Use:   "get <tx-hash>",
		Short: "Look up a payment by transaction hash",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/payments/" + args[0])
		},
	})

	paymentCmd.AddCommand(&cobra.Command{
		Use:   "allocations <tx-hash>",
		Short: "List the pool allocations of a payment",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/payments/" + args[0] + "/allocations")
		},
	})

	rootCmd.AddCommand(paymentCmd)

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "list <user-id>",
		Short: "List a user's ledger entries",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/users/" + args[0] + "/ledger")
		},
	})

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "verify <user-id>",
		Short: "Verify a user's hash chain",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			verifyChain(args[0])
		},
	})

	rootCmd.AddCommand(ledgerCmd)

	// Spin commands
	spinCmd := &cobra.Command{
		Use:   "spin",
		Short: "Wheel operations",
	}

	spinCmd.AddCommand(&cobra.Command{
		Use:   "run <user-id>",
		Short: "Spin the wheel for a user",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/users/"+args[0]+"/spins", nil)
		},
	})

	spinCmd.AddCommand(&cobra.Command{
		Use:   "history <user-id>",
		Short: "Show a user's spin history",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/users/" + args[0] + "/spins")
		},
	})

	rootCmd.AddCommand(spinCmd)

	// Prediction command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "predict <user-id> <higher|lower>",
		Short: "Submit a BTC price prediction",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/predictions", map[string]any{
				"user_id":   args[0],
				"direction": args[1],
			})
		},
	})

	// Withdrawal commands
	withdrawalCmd := &cobra.Command{
		Use:   "withdrawal",
		Short: "Withdrawal pipeline operations",
	}

	requestCmd := &cobra.Command{
		Use:   "request <user-id> <amount> <wallet>",
		Short: "Request a USDT withdrawal",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			network, _ := cmd.Flags().GetString("network")
			post("/api/v1/withdrawals", map[string]any{
				"user_id":   args[0],
				"amount":    args[1],
				"to_wallet": args[2],
				"network":   network,
			})
		},
	}
	requestCmd.Flags().String("network", "TRC20", "Payout network")
	withdrawalCmd.AddCommand(requestCmd)

	withdrawalCmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Look up a withdrawal",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/withdrawals/" + args[0])
		},
	})

	withdrawalCmd.AddCommand(&cobra.Command{
		Use:   "release <id>",
		Short: "Release a flagged withdrawal to ready",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/withdrawals/"+args[0]+"/release", nil)
		},
	})

	withdrawalCmd.AddCommand(&cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a batched withdrawal",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/withdrawals/"+args[0]+"/approve", nil)
		},
	})

	rejectCmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a withdrawal and refund the user",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			reason, _ := cmd.Flags().GetString("reason")
			post("/api/v1/withdrawals/"+args[0]+"/reject", map[string]any{
				"reason": reason,
			})
		},
	}
	rejectCmd.Flags().String("reason", "", "Rejection reason")
	withdrawalCmd.AddCommand(rejectCmd)

	withdrawalCmd.AddCommand(&cobra.Command{
		Use:   "batch",
		Short: "Group ready withdrawals into a payout batch",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/withdrawals/batch", nil)
		},
	})

	rootCmd.AddCommand(withdrawalCmd)

	// Status commands
	rootCmd.AddCommand(&cobra.Command{
		Use:   "oracle",
		Short: "Show oracle status",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/oracle")
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "settlements",
		Short: "Show today's settlement summaries",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/settlements")
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func get(path string) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	do(client, req)
}

// post sends a JSON body with a fresh idempotency key, so an
// interrupted command can be re-run without double effects.
func post(path string, body map[string]any) {
	client := &http.Client{Timeout: timeout}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Error encoding request: %v\n", err)
			os.Exit(1)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, reader)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	do(client, req)
}

func do(client *http.Client, req *http.Request) {
	if adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}

	fmt.Println(pretty.String())
}

func verifyChain(userID string) {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(baseURL + "/api/v1/users/" + userID + "/ledger/verify")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Chain verification FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if valid, ok := result["valid"].(bool); ok && !valid {
		fmt.Printf("Chain verification FAILED\n")
		if broken, ok := result["broken_entry_id"].(string); ok {
			fmt.Printf("Broken at entry: %s\n", broken)
		}
		os.Exit(1)
	}

	fmt.Printf("Chain verification PASSED\n")
	if entries, ok := result["entries"].(float64); ok {
		fmt.Printf("Entries: %d\n", int(entries))
	}
}
