// Command sensorctl is a diagnostic CLI over the sensorcapture facade: it
// enumerates devices, streams decoded samples to stdout, and renders a
// live terminal dashboard. It is operator tooling around the core library,
// not part of the core itself.
package main

func main() {
	Execute()
}
