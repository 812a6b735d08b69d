/*
Copyright (c) The mac154 Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// mac154sniff is a poor man's tshark for IEEE 802.15.4: it reads raw
// frames off a serial-attached sniffer dongle or replays an existing
// .pcap, decodes each one through the frame package, dumps it to
// stdout and, when an output file is given, also writes the frames out
// as a fresh .pcap.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/go154/mac154/frame"
)

var (
	serialDeviceFlag string
	serialBaudFlag   int
	replayFlag       string
	outPCAPFlag      string
	verboseFlag      bool
)

func init() {
	flag.StringVar(&serialDeviceFlag, "serial", "", "serial device the sniffer dongle is attached to, e.g. /dev/ttyUSB0")
	flag.IntVar(&serialBaudFlag, "baud", 115200, "serial baud rate")
	flag.StringVar(&replayFlag, "replay", "", "replay frames from an existing .pcap instead of a live serial device")
	flag.StringVar(&outPCAPFlag, "pcap", "", "write decoded frames out to this .pcap; omit to only dump to stdout")
	flag.BoolVar(&verboseFlag, "v", false, "verbose logging")
}

// frameSource yields successive raw 802.15.4 frames (without the
// sniffer dongle's own framing, if any).
type frameSource interface {
	next() ([]byte, error)
}

// lengthPrefixedSerial reads frames from a serial line that prefixes
// each frame with a one-byte length, the simplest framing a sniffer
// firmware can emit; grounded on sa53fw/mac/mac.go's serial.Mode{
// BaudRate}+serial.Open, generalized from that file's fixed-baud
// single-purpose Init to an operator-supplied baud rate.
type lengthPrefixedSerial struct {
	r *bufio.Reader
}

func openSerial(device string, baud int) (*lengthPrefixedSerial, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", device, err)
	}
	return &lengthPrefixedSerial{r: bufio.NewReader(port)}, nil
}

func (s *lengthPrefixedSerial) next() ([]byte, error) {
	length, err := s.r.ReadByte()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, fmt.Errorf("reading %d-byte frame: %w", length, err)
	}
	return buf, nil
}

// pcapReplay replays raw link-layer payloads out of an existing
// capture file, for testing mac154sniff's decode/re-encode path
// without hardware attached.
type pcapReplay struct {
	src gopacket.PacketDataSource
}

func openPCAPReplay(path string) (*pcapReplay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &pcapReplay{src: r}, nil
}

func (p *pcapReplay) next() ([]byte, error) {
	data, _, err := p.src.ReadPacketData()
	return data, err
}

// pcapSink writes decoded frames back out as a new capture file, link
// type 802.15.4, snap length the MAC's 127-byte MTU.
type pcapSink struct {
	f *os.File
	w *pcapgo.Writer
}

func openPCAPSink(path string) (*pcapSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(127, layers.LinkTypeIEEE802_15_4); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing pcap header: %w", err)
	}
	return &pcapSink{f: f, w: w}, nil
}

func (s *pcapSink) write(raw []byte, ts time.Time) error {
	return s.w.WritePacket(gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(raw),
		Length:        len(raw),
	}, raw)
}

func (s *pcapSink) close() error { return s.f.Close() }

func dump(raw []byte) {
	mpdu, err := frame.ParseMHR(raw)
	if err != nil {
		fmt.Printf("% x -- undecodable: %v\n", raw, err)
		return
	}
	spew.Dump(mpdu)
}

func run() error {
	var src frameSource
	var err error
	if replayFlag != "" {
		src, err = openPCAPReplay(replayFlag)
	} else {
		if serialDeviceFlag == "" {
			return fmt.Errorf("one of -serial or -replay is required")
		}
		src, err = openSerial(serialDeviceFlag, serialBaudFlag)
	}
	if err != nil {
		return err
	}

	var sink *pcapSink
	if outPCAPFlag != "" {
		sink, err = openPCAPSink(outPCAPFlag)
		if err != nil {
			return err
		}
		defer sink.close()
	}

	for {
		raw, err := src.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}
		dump(raw)
		if sink != nil {
			if err := sink.write(raw, time.Now()); err != nil {
				return fmt.Errorf("writing pcap: %w", err)
			}
		}
	}
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "mac154sniff: poor man's tshark for IEEE 802.15.4.\nUsage:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if verboseFlag {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
}
