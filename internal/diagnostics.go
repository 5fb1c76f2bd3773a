package internal

import (
	"log"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/earthboundkid/versioninfo/v2"
)

var sensitiveRegex = regexp.MustCompile(`(?i)(PASSWORD|API_KEY|ACCESS_KEY|SECRET|TOKEN)`)

func ShowVersion() {
	log.Printf("Version: %s", versioninfo.Short())
}

// StudioSettings logs the WINTER_* environment the process was started with.
func StudioSettings() {
	settings := WinterEnviron(os.Environ())
	if len(settings) == 0 {
		log.Println("No WINTER_* environment overrides, using defaults")
		return
	}

	log.Println("Environment overrides")
	for _, kv := range settings {
		log.Printf("  %s: %s", kv[0], kv[1])
	}
}

// WinterEnviron picks WINTER_* entries from environ, sorted by key, with
// anything that looks like a credential masked.
func WinterEnviron(environ []string) [][2]string {
	settings := make([][2]string, 0)
	for _, entry := range environ {
		key, value, _ := strings.Cut(entry, "=")
		if !strings.HasPrefix(key, "WINTER_") {
			continue
		}
		if sensitiveRegex.MatchString(key) {
			value = "********"
		}
		settings = append(settings, [2]string{key, value})
	}
	sort.Slice(settings, func(i, j int) bool {
		return settings[i][0] < settings[j][0]
	})
	return settings
}
