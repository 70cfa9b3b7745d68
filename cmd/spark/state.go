package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/compolabs/spark-miden-v1/internal/config"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

const (
	stateFaucetA = "faucet_a"
	stateFaucetB = "faucet_b"
	stateUser    = "user"
)

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(config.GetStatePath())
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, fmt.Errorf("get state error: %w", err)
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("get state error: %w", err)
	}
	return data, nil
}

func setState(data map[string]string) error {
	currentData, err := getState()
	if err != nil {
		return err
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.MarshalIndent(mergedData, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(config.GetStatePath(), jsonString, 0644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}
	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

// getAccountID parses the value of the flag with the given name. Aliases
// stored in the state by setup, like "user" or "faucet_a", are accepted in
// place of the hex id.
func getAccountID(ctx *cli.Context, flag string) (notes.AccountID, error) {
	value := ctx.String(flag)
	if value == "" {
		return 0, fmt.Errorf("missing %s", flag)
	}
	return resolveAccountID(value)
}

func resolveAccountID(value string) (notes.AccountID, error) {
	state, err := getState()
	if err != nil {
		return 0, err
	}
	if id, ok := state[value]; ok {
		value = id
	}
	return notes.ParseAccountID(value)
}
