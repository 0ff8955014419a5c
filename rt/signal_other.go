//go:build !unix

package rt

func ignoreSigpipe() {}
