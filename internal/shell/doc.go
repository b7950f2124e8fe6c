// Package shell implements an interactive shell with job control.
//
// A Worker owns every job, process group and process the shell knows about.
// It runs on a single goroutine and is driven only by messages: lines
// submitted by the Shell loop and signals forwarded by the Relay. The Shell
// loop submits one line at a time and waits for the Worker's Reply before it
// reads the next one.
package shell
