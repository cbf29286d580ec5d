// SPDX-License-Identifier: EPL-2.0

// Command audmark embeds and detects audio watermarks, either as an HTTP
// service (serve) or on local files (embed, detect).
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
