package httpx

import "math/rand"

// desktopUserAgents mirrors the call-site shape seen throughout the
// teacher pack (useragent.Random() / useragent.RandomDesktop()); the
// package itself was never present in the retrieved sources, so this is
// authored fresh from a fixed, representative pool.
var desktopUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// Random returns a random User-Agent string from the desktop pool.
func Random() string {
	return desktopUserAgents[rand.Intn(len(desktopUserAgents))]
}

// RandomDesktop is an alias kept for symmetry with the call sites that
// specifically want a desktop-class UA (there is only one pool here).
func RandomDesktop() string {
	return Random()
}
