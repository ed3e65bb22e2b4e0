// Command catl1-hasher streams a CATL v1 file through the SHAMap core and
// reports per-ledger hash verification.
package main

import "github.com/sublimator/catalogue-tools-sub002/internal/cli"

func main() {
	cli.Execute()
}
