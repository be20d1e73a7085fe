package queue

import (
	"fmt"
	"os"
)

// LoadTurnFile reads a turn request from a JSON file. The file carries at
// least state and action; request id, game id and enqueue time are filled in
// when absent.
func LoadTurnFile(path string) (*TurnRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read turn file: %w", err)
	}
	req, err := FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse turn file %s: %w", path, err)
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid turn file %s: %w", path, err)
	}
	return req, nil
}
