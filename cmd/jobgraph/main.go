// Command jobgraph builds job graphs from pipeline descriptors and drives
// them from task events.
package main

import "os"

func main() {
	os.Exit(execute())
}
