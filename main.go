// Package main is the entry point for the paladins CLI tool, which crawls
// paladins.guru match histories and reports on the tracked players.
package main

import "github.com/optisebas/paladins-match-analyzer/cmd"

func main() {
	cmd.Execute()
}
