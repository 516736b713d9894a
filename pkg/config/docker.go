package config

import (
	"os"
	"sync"
)

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker reports whether /.dockerenv exists. The result is cached.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// resolveBindAddrForDocker widens a loopback bind address to all interfaces
// inside a container, where loopback is unreachable through a published port.
func resolveBindAddrForDocker(addr string, inDocker bool) string {
	if !inDocker {
		return addr
	}
	switch addr {
	case "localhost", "127.0.0.1":
		return "0.0.0.0"
	case "::1":
		return "::"
	}
	return addr
}
