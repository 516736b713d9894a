package main

import "github.com/ekaya-inc/aecdm-mcp/cmd"

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cmd.Execute(Version)
}
