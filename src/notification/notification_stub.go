//go:build !windows

// Package notification reports fatal startup problems to the user.
package notification

import (
	"fmt"
	"log"
	"os"
)

// ShowBlockingError logs the message and prints it to stderr on non-Windows platforms.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}
