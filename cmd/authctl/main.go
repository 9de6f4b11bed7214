// Command authctl is the operator tool for the customer auth service.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd(openBackend).Execute(); err != nil {
		os.Exit(1)
	}
}
