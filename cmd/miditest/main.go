package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"midi-messenger/config"
	"midi-messenger/messenger"
	mm "midi-messenger/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	defer midi.CloseDriver()

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		if len(os.Args) < 3 {
			usage()
			return
		}
		monitor(os.Args[2])
	case "send":
		if len(os.Args) < 3 {
			usage()
			return
		}
		sendTest(os.Args[2])
	case "demo":
		demo()
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list            - List all MIDI ports")
	fmt.Println("  monitor <port>  - Log messages from an input port")
	fmt.Println("  send <port>     - Send a test note to an output port")
	fmt.Println("  demo            - Run a scripted session and print its log")
	fmt.Println("  poll            - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

// monitor prints incoming messages in the session log format
func monitor(filter string) {
	var inPort drivers.In
	for _, p := range midi.GetInPorts() {
		if mm.MatchesFilter(p.String(), []string{filter}) {
			inPort = p
			break
		}
	}
	if inPort == nil {
		fmt.Printf("No input matching %q\n", filter)
		return
	}

	kb, err := mm.NewKeyboardController(inPort.String(), inPort)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer kb.Close()

	fmt.Printf("Monitoring %s. Ctrl+C to exit.\n", inPort.String())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	start := time.Now()
	for {
		select {
		case <-interrupt:
			return
		case msg, ok := <-kb.Messages():
			if !ok {
				return
			}
			fmt.Println(mm.LogLine(time.Since(start).Seconds(), msg))
		}
	}
}

func sendTest(portName string) {
	out := mm.NewOutput(portName)
	fmt.Printf("Sending note on/off to %s\n", portName)

	if err := out.Send(midi.NoteOn(0, 60, 100)); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	time.Sleep(100 * time.Millisecond)
	if err := out.Send(midi.NoteOff(0, 60)); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("Done!")
}

func demo() {
	cfg := config.DefaultConfig()
	for _, line := range messenger.RunScript(cfg, messenger.DemoSteps(cfg), 2*time.Second) {
		fmt.Println(line.Text)
	}
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a MIDI device to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		var inNames, outNames []string
		for _, p := range midi.GetInPorts() {
			inNames = append(inNames, p.String())
		}
		for _, p := range midi.GetOutPorts() {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
