package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/fulfillbridge/internal/config"
)

// PrintConfigCheck prints the configuration check results
func PrintConfigCheck(w io.Writer, result *config.CheckResult) {
	fmt.Fprintln(w, "=== Configuration Check ===")
	fmt.Fprintln(w)

	if len(result.Missing) > 0 {
		fmt.Fprintln(w, "❌ Missing required variables:")
		for _, v := range result.Missing {
			fmt.Fprintf(w, "   - %s\n", v)
		}
		fmt.Fprintln(w)
	}

	if len(result.Present) > 0 {
		keys := make([]string, 0, len(result.Present))
		for k := range result.Present {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(w, "✓ Configured variables:")
		for _, k := range keys {
			fmt.Fprintf(w, "   - %s = %s\n", k, result.Present[k])
		}
		fmt.Fprintln(w)
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "⚠ Warning: %s\n", warning)
	}

	if len(result.Missing) == 0 {
		fmt.Fprintln(w, "✓ All required configuration is present")
	}

	fmt.Fprintln(w, "============================")
}
