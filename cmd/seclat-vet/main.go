// seclat-vet runs the checker as a vet tool: go vet -vettool=$(which seclat-vet) ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/latticelabs/seclat/checker"
)

func main() {
	singlechecker.Main(checker.Analyzer)
}
