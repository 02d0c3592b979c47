// Package platform describes the execution environment a container runs in.
//
// A container lives in exactly one of two environments: the one-shot server
// render, or the long-lived client session that resumes the server's output.
// The environment gates which lifecycle registrars actually execute.
package platform

// Platform reports the environment for one container.
type Platform struct {
	// Server is true during the one-shot server render and false in the
	// long-lived client session.
	Server bool
}

// IsServer reports whether this is the one-shot server render environment.
func (p Platform) IsServer() bool { return p.Server }

// IsClient reports whether this is the long-lived client environment.
func (p Platform) IsClient() bool { return !p.Server }

// ServerPlatform returns the platform for a one-shot server render.
func ServerPlatform() Platform { return Platform{Server: true} }

// ClientPlatform returns the platform for a long-lived client session.
func ClientPlatform() Platform { return Platform{Server: false} }
