// Command vtmonitor is a small terminal input visualizer built on
// vtinput. It puts the terminal into raw mode, enables the protocols the
// user asked for, and prints every decoded Event as it arrives. Pass
// -debug to also log the raw bytes behind each event, and
// -mirror-clipboard to copy bracketed-paste content to the system
// clipboard as it's received.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/muesli/cancelreader"

	"github.com/unxed/vtinput"
)

const readTimeout = 100 * time.Millisecond

func main() {
	useKitty := flag.Bool("kitty", true, "enable the Kitty keyboard protocol")
	useMouse := flag.Bool("mouse", true, "enable SGR mouse reporting")
	useExt := flag.Bool("ext", true, "enable focus tracking and bracketed paste")
	debug := flag.Bool("debug", false, "log raw input bytes and decoded events to stderr")
	mirrorClipboard := flag.Bool("mirror-clipboard", false, "copy bracketed-paste content to the system clipboard")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if !*debug {
		logger.SetLevel(log.WarnLevel)
	}

	var mask vtinput.Protocol
	if *useKitty {
		mask |= vtinput.ProtocolKitty
	}
	if *useMouse {
		mask |= vtinput.ProtocolMouse
	}
	if *useExt {
		mask |= vtinput.ProtocolFocus | vtinput.ProtocolPaste
	}

	restore, err := vtinput.EnableProtocols(mask)
	if err != nil {
		logger.Fatal("failed to enable raw mode", "err", err)
	}
	defer restore()

	cr, err := cancelreader.NewReader(os.Stdin)
	if err != nil {
		logger.Fatal("failed to create cancel reader", "err", err)
	}
	defer cr.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go watchInterrupt(sigCh, cr)

	type readResult struct {
		data []byte
		err  error
	}
	reads := make(chan readResult)
	go func() {
		buf := make([]byte, 4096)
		for {
			nb, err := cr.Read(buf)
			data := append([]byte(nil), buf[:nb]...)
			reads <- readResult{data, err}
			if err != nil {
				return
			}
		}
	}()

	parser := vtinput.NewParser()

	for {
		var timeout <-chan time.Time
		if parser.Pending() {
			timeout = time.After(readTimeout)
		}

		select {
		case r := <-reads:
			if r.err != nil {
				if errors.Is(r.err, cancelreader.ErrCanceled) {
					return
				}
				logger.Error("read failed", "err", r.err)
				return
			}
			logger.Debug("raw input", "bytes", r.data)
			if emitAll(parser.Parse(r.data), logger, *mirrorClipboard) {
				return
			}
		case <-timeout:
			if emitAll(parser.Flush(), logger, *mirrorClipboard) {
				return
			}
		}
	}
}

func watchInterrupt(sigCh chan os.Signal, cr cancelreader.CancelReader) {
	<-sigCh
	cr.Cancel()
}

// emitAll prints and logs each event, mirroring paste content to the
// clipboard when asked. It reports whether the caller should exit.
func emitAll(events []vtinput.Event, logger *log.Logger, mirrorClipboard bool) bool {
	for _, e := range events {
		handleEvent(e, logger, mirrorClipboard)
		if isExitEvent(e) {
			return true
		}
	}
	return false
}

func handleEvent(e vtinput.Event, logger *log.Logger, mirrorClipboard bool) {
	fmt.Printf("%v\r\n", e)
	logger.Debug("event", "event", e)

	if paste, ok := e.(vtinput.PasteEvent); ok && mirrorClipboard {
		if err := clipboard.WriteAll(paste.Content); err != nil {
			logger.Warn("clipboard write failed", "err", err)
		}
	}
}

func isExitEvent(e vtinput.Event) bool {
	k, ok := e.(vtinput.KeyEvent)
	if !ok {
		return false
	}
	if k.Code == vtinput.KeyEscape {
		return true
	}
	return k.Code == vtinput.KeyChar && k.Char == 'c' && k.Ctrl
}
