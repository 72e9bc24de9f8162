// Command aiexplain is a thin CLI over the decision core: it loads a JSON
// snapshot of a kingdom or battle arena and prints the commands a planner
// would emit for it, for debugging and scenario replay. Grounded on
// turnforge-weewar/cmd/cli's cobra entrypoint shape.
package main

import (
	"fmt"
	"os"

	"github.com/turnforge/heroesai/cmd/aiexplain/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
