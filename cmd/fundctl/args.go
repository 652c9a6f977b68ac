package main

import (
	"fmt"
	"strconv"
	"strings"

	"indexfund-api/pkg/registry"
)

// parseUpdates reads asset=weight pairs in command-line order. Commas may also
// separate pairs within one argument.
func parseUpdates(args []string) ([]registry.AssetWeight, error) {
	var out []registry.AssetWeight
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			asset, raw, ok := strings.Cut(field, "=")
			asset = strings.TrimSpace(asset)
			if !ok || asset == "" {
				return nil, fmt.Errorf("expected asset=weight, got %q", field)
			}
			weight, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("weight for %s: %w", asset, err)
			}
			out = append(out, registry.AssetWeight{AssetID: registry.AssetID(asset), Weight: weight})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no asset=weight pairs given")
	}
	return out, nil
}

func parseInterval(raw string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("rebalance interval %q: %w", raw, err)
	}
	return v, nil
}
