//go:build ignore
// +build ignore

// Package main provides a manual concurrency stress test for the LibraNet lending API.
//
// Usage:
//
//	go run ./scripts/concurrency_test.go <item_id> <user1_id> [user2_id ...]
//
// Or use the convenience environment variables:
//
//	ITEM_ID=101  USER_IDS=201,202,203  go run ./scripts/concurrency_test.go
//
// What it does:
//  1. Fires N goroutines (one per user) all attempting to borrow the same item simultaneously.
//  2. Counts 201 (borrowed) vs 409 (item not available) responses.
//  3. Fails unless exactly one borrow succeeded.
//
// Prerequisites:
//   - Server must be running and the item must be AVAILABLE.
//   - The N users must exist (POST /users).
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultServerAddr = "http://localhost:8080"

type borrowResult struct {
	UserID     int
	StatusCode int
	Kind       string
	Err        error
}

func main() {
	serverAddr := os.Getenv("SERVER_URL")
	if serverAddr == "" {
		serverAddr = defaultServerAddr
	}

	itemID := os.Getenv("ITEM_ID")
	var rawUsers []string
	if env := os.Getenv("USER_IDS"); env != "" {
		rawUsers = strings.Split(env, ",")
	}

	args := os.Args[1:]
	if len(args) >= 1 {
		itemID = args[0]
	}
	if len(args) >= 2 {
		rawUsers = args[1:]
	}

	if itemID == "" {
		log.Fatal("Usage: ITEM_ID=<id> USER_IDS=<u1,u2,...> go run ./scripts/concurrency_test.go\n" +
			"  or: go run ./scripts/concurrency_test.go <item_id> <user1_id> [user2_id ...]")
	}
	userIDs := make([]int, 0, len(rawUsers))
	for _, raw := range rawUsers {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			log.Fatalf("invalid user id %q: %v", raw, err)
		}
		userIDs = append(userIDs, id)
	}
	if len(userIDs) == 0 {
		log.Fatal("At least one user ID must be provided via USER_IDS env or positional args")
	}

	fmt.Printf("=== LibraNet Concurrency Test ===\n")
	fmt.Printf("Server : %s\n", serverAddr)
	fmt.Printf("Item   : %s\n", itemID)
	fmt.Printf("Users  : %d\n\n", len(userIDs))

	results := make([]borrowResult, len(userIDs))
	var wg sync.WaitGroup

	// Barrier so every borrower fires at once.
	start := make(chan struct{})

	for i, uid := range userIDs {
		wg.Add(1)
		go func(idx, userID int) {
			defer wg.Done()
			<-start
			results[idx] = attemptBorrow(serverAddr, itemID, userID)
		}(i, uid)
	}

	fmt.Println("Firing all requests simultaneously...")
	close(start)
	wg.Wait()
	fmt.Println("All requests completed.")
	fmt.Println()

	var borrowed, rejected, failures int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failures++
			fmt.Printf("  [ERR ] user=%-6d err=%v\n", r.UserID, r.Err)
		case r.StatusCode == http.StatusCreated:
			borrowed++
			fmt.Printf("  [BORR] user=%-6d status=%d\n", r.UserID, r.StatusCode)
		case r.StatusCode == http.StatusConflict:
			rejected++
			fmt.Printf("  [BUSY] user=%-6d status=%d kind=%s\n", r.UserID, r.StatusCode, r.Kind)
		default:
			failures++
			fmt.Printf("  [FAIL] user=%-6d status=%d kind=%s\n", r.UserID, r.StatusCode, r.Kind)
		}
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Borrowed : %d\n", borrowed)
	fmt.Printf("Rejected : %d\n", rejected)
	fmt.Printf("Failures : %d\n", failures)
	fmt.Printf("Total    : %d\n\n", len(userIDs))

	if borrowed != 1 {
		fmt.Printf("[FAIL] expected exactly one successful borrow, got %d\n", borrowed)
		os.Exit(1)
	}
	if failures > 0 {
		fmt.Printf("[WARNING] %d request(s) failed, check server logs for details.\n", failures)
		os.Exit(1)
	}
	fmt.Println("[OK] exactly one borrower won the item.")
}

// attemptBorrow sends POST /items/{itemID}/borrow for the given user.
func attemptBorrow(serverAddr, itemID string, userID int) borrowResult {
	url := fmt.Sprintf("%s/items/%s/borrow", serverAddr, itemID)
	body := fmt.Sprintf(`{"user_id":%d,"duration":"7 days"}`, userID)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		return borrowResult{UserID: userID, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return borrowResult{UserID: userID, StatusCode: resp.StatusCode, Err: fmt.Errorf("bad JSON: %s", raw)}
	}

	kind, _ := parsed["kind"].(string)
	return borrowResult{UserID: userID, StatusCode: resp.StatusCode, Kind: kind}
}
