package main

import (
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("jdis")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
