package config

import "os"

func IsDebug() bool {
	return os.Getenv("BUDDY_DEBUG") == "1"
}
