// Command sgp4cmp сравнивает пропагатор SGP4/SDP4 с эталонными эфемеридами
// и печатает векторы состояния и элементы по TLE.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
