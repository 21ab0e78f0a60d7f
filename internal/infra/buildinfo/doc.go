// Package buildinfo provides build information for DocMesh.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/docmesh-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Commit and build time fall back to the toolchain's VCS stamp.
package buildinfo
