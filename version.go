package main

import "fmt"

const chatterVersion = "0.3.0"

// versionBanner is the first line every status buffer shows.
func versionBanner() string {
	return fmt.Sprintf("chatter v%s", chatterVersion)
}
