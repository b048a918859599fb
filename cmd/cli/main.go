package main

import (
	"github.com/driverly/driverly/cmd/cli/root"

	_ "github.com/driverly/driverly/cmd/cli/auth"
	_ "github.com/driverly/driverly/cmd/cli/hashpw"
	_ "github.com/driverly/driverly/cmd/cli/seed"
	_ "github.com/driverly/driverly/cmd/cli/users"
)

func main() {
	root.Execute()
}
