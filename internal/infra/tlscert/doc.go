// Package tlscert serves the HTTPS certificate of docmesh-server and
// reloads it when the certificate or key file changes on disk.
//
// A Reloader is plugged into tls.Config.GetCertificate, so rotated
// certificates take effect for new handshakes without a restart.
// Established connections keep the certificate they negotiated.
package tlscert
