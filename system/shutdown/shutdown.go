package shutdown

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/ferecasa/ac-controller/internal/env"
	"github.com/ferecasa/ac-controller/internal/pinctrl"
)

// ExitFunc is overridden by tests that exercise shutdown paths.
var ExitFunc = os.Exit

// Shutdown darkens the status LED and exits. Exit code 0: under systemd
// with Restart=always this doubles as the remote-reboot path.
func Shutdown() {
	if env.Cfg != nil && !env.Cfg.SafeMode {
		off := "dl"
		if !env.Cfg.LEDActiveHigh {
			off = "dh"
		}
		for _, pin := range []*int{env.Cfg.GPIO.LEDRed, env.Cfg.GPIO.LEDGreen, env.Cfg.GPIO.LEDBlue} {
			if pin != nil {
				pinctrl.SetPin(*pin, "op", "pn", off)
			}
		}
		log.Info().Msg("Status LED turned off")
	}
	ExitFunc(0)
}

func ShutdownWithError(err error, msg string) {
	log.Error().Err(err).Msg(msg)
	Shutdown()
}
