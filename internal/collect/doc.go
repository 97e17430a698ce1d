// Package collect gathers repository files into a single context string that
// accompanies a diff when an overview is requested.
package collect
