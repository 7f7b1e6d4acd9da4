package main

import (
	"encoding/json"
	"fmt"
	"os"
)

func localUser() string {
	if apiUser != "" {
		return apiUser
	}
	if user := os.Getenv("USERNAME"); user != "" {
		return user
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "local"
}

// printResult renders an operation result envelope. Failures set a non-nil
// error so the process exits non-zero.
func printResult(result *OperationResult) error {
	if result.Success {
		fmt.Println(result.Message)
		return nil
	}
	if result.Details != "" {
		fmt.Fprintln(os.Stderr, result.Details)
	}
	return fmt.Errorf("%s: %s", result.ErrorCode, result.Message)
}

// decodeResultData decodes the data payload of a successful operation result.
func decodeResultData(result *OperationResult, dst interface{}) error {
	if !result.Success {
		return fmt.Errorf("%s: %s", result.ErrorCode, result.Message)
	}
	if len(result.Data) == 0 {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(result.Data, dst); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
