package platform

import (
	"os"
	"time"
)

// TimeZone returns the IANA zone name of the local clock: TZ when set, else
// the /etc/localtime link target, else the zone abbreviation ("CET").
func TimeZone() string {
	if tz := os.Getenv("TZ"); tz != "" && tz != "Local" {
		return tz
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if zone := parseZoneLink(target); zone != "" {
			return zone
		}
	}
	name, _ := time.Now().Zone()
	return name
}
