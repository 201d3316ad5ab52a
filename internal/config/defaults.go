// ABOUTME: Centralized configuration defaults for gachi
// ABOUTME: Contains magic numbers and hardcoded values for display, storage and integrations

package config

import (
	"time"

	"github.com/google/uuid"
)

// HTTP settings
const (
	DefaultListen        = "127.0.0.1:8480"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o"
)

// Locale settings
const (
	DefaultTimezone = "Asia/Seoul"
	DefaultDistrict = "종로구"
)

// Display settings
const (
	DefaultListLimit = 20
	DisplayIDLength  = 8
)

// Storage settings
const (
	DBFilename      = "gachi.db"
	DefaultDirPerms = 0755
)

// Import settings
const (
	DefaultImportBatchSize = 100
	DefaultImportCron      = "0 4 * * *"
	DefaultWatchInterval   = 5 * time.Second
)

func newUserID() string {
	return uuid.New().String()
}
