// Package audit appends order lifecycle markers to a plain text file.
//
// The file carries one marker per line, written in arrival order:
//
//	START <orderId>
//	DONE <orderId>
//
// Appends are best-effort. Callers log failures and continue; an order is
// never failed because its audit line could not be written.
package audit

import (
	"fmt"
	"os"
)

// Start builds the marker line recorded before an order's outcome is known.
func Start(orderID string) string {
	return "START " + orderID
}

// Done builds the marker line recorded after an order completes.
func Done(orderID string) string {
	return "DONE " + orderID
}

// Append writes line (plus a trailing newline) to the file at path,
// creating it on first use.
func Append(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("audit: open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("audit: append to %s: %w", path, err)
	}
	return nil
}
