package main

import (
	"github.com/tanpawarit/market-digest-agents/cmd"
	_ "github.com/tanpawarit/market-digest-agents/pkg/logger/autoload"
)

func main() {
	cmd.Execute()
}
