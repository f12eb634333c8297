package main

import (
	"flag"
	"os"

	mapper "github.com/axiskey/mapper"
)

func main() {
	path := os.Getenv("AXISKEY_CONFIG")
	if path == "" {
		path = mapper.DefaultConfigPath
	}
	configPath := flag.String("config", path, "path to the TOML config file")
	flag.Parse()

	mapper.Main(*configPath)
}
