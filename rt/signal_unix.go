//go:build unix

package rt

import (
	"os/signal"

	"golang.org/x/sys/unix"
)

// ignoreSigpipe makes broken pipes surface as write errors instead of
// killing the process.
func ignoreSigpipe() {
	signal.Ignore(unix.SIGPIPE)
}
