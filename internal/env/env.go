package env

import (
	"time"

	"github.com/ferecasa/ac-controller/internal/config"
)

var (
	Cfg       *config.Config
	StartTime time.Time
)
