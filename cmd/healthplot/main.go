package main

import "github.com/jisaac01/health-stats/internal/cmd"

func main() {
	cmd.Execute()
}
