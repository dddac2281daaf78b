// ac-debug encodes a command offline and prints the frame bytes and pulse
// train, for checking the encoder against a receiver dump without hardware.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ferecasa/ac-controller/internal/midea"
	"github.com/ferecasa/ac-controller/internal/model"
)

func main() {
	var (
		power   = flag.Bool("power", true, "Power state to encode")
		temp    = flag.Int("temp", 24, "Target temperature (17-30)")
		mode    = flag.String("mode", "cool", "Mode: cool, heat, auto, fan, dry")
		fan     = flag.String("fan", "auto", "Fan speed: auto, low, medium, high")
		capture = flag.String("capture", "", "Play back a capture file instead of encoding")
		raw     = flag.Bool("raw", false, "Print one duration per line (microseconds)")
	)
	flag.Parse()

	m, ok := model.ParseMode(*mode)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(1)
	}
	f, ok := model.ParseFanSpeed(*fan)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown fan speed %q\n", *fan)
		os.Exit(1)
	}

	cmd := model.Command{
		Power:       *power,
		Temperature: midea.ClampTemp(*temp),
		Mode:        m,
		Fan:         f,
	}

	var source midea.Source = midea.ComputedSource{}
	if *capture != "" {
		literal, err := midea.LoadLiteralSource(*capture)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		source = literal
	} else {
		frame := midea.Frame(cmd)
		fmt.Printf("frame: 0x%02X 0x%02X 0x%02X\n", frame[0], frame[1], frame[2])
	}

	train, err := source.Train(cmd)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("carrier: %d Hz, pairs: %d\n", train.CarrierHz, len(train.Pairs))

	if *raw {
		for _, d := range train.Durations() {
			fmt.Println(int64(d / time.Microsecond))
		}
		return
	}

	for i, p := range train.Pairs {
		fmt.Printf("%3d: mark %5dus space %5dus\n",
			i, int64(p.Mark()/time.Microsecond), int64(p.Space()/time.Microsecond))
	}
}
