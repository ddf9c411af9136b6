// formwatch validates sign-up fields as they are typed
package main

import (
	"os"

	"github.com/iiroan/formwatch/cmd/formwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
