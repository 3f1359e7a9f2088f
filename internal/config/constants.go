package config

import "time"

// Base application details
const AppName = "tide"
const DefaultConfigFileName = "config.toml"
const DefaultLogFileName = "tide.log"

// Analysis
const DefaultDebounce = 65 * time.Millisecond
const DefaultCheckpointInterval = 256
