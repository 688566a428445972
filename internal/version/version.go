// Package version carries the build version, set with
// -ldflags "-X github.com/bnema/labrecruits-gym/internal/version.Version=v1.2.3".
package version

var Version = "dev"
