package config

import (
	"os"
	"sync"
)

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker returns true if the application is running inside a Docker container.
// Detection is based on the presence of /.dockerenv file which exists in all Docker containers.
// The result is cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// ResolveBindAddrForDocker returns the address the HTTP server should bind to.
// Inside a container a loopback bind address is unreachable from the published
// port, so "localhost" and "127.0.0.1" become "0.0.0.0" there.
// Otherwise, returns the original address unchanged.
func ResolveBindAddrForDocker(addr string) string {
	if !IsRunningInDocker() {
		return addr
	}

	if addr == "localhost" || addr == "127.0.0.1" {
		return "0.0.0.0"
	}

	return addr
}
