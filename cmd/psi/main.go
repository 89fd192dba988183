// Command psi runs the two-party private set intersection protocol in a
// single process: it plays the Receiver with one dataset file and the
// Sender with the other, then prints the intersection the Receiver ends
// up with.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/privset/psi"
	"github.com/privset/psi/dataio"
)

var l = log.New(os.Stderr, "", 0)

func check(err error) {
	if err != nil {
		l.Fatal(err)
	}
}

func main() {
	recvPath := flag.String("recv", "", "receiver dataset file, one bitstring per line")
	sendPath := flag.String("send", "", "sender dataset file, one bitstring per line")
	logN := flag.Int("logn", 13, "ring degree (log2): 12, 13 or 14")
	modeName := flag.String("mode", "membership", "matching mode: membership or positional")
	outPath := flag.String("o", "", "write the intersection to this file")
	quiet := flag.Bool("q", false, "suppress the protocol audit log")
	flag.Parse()

	if *recvPath == "" || *sendPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	var mode psi.MatchMode
	switch *modeName {
	case "membership":
		mode = psi.MatchModeMembership
	case "positional":
		mode = psi.MatchModePositional
	default:
		l.Fatalf("unknown mode %q", *modeName)
	}

	params, err := psi.ParametersForDegree(*logN)
	check(err)

	recvSet, err := dataio.ReadBitstrings(*recvPath)
	check(err)
	sendSet, err := dataio.ReadBitstrings(*sendPath)
	check(err)

	recvDs, err := psi.NewDataset(recvSet)
	check(err)
	sendDs, err := psi.NewDataset(sendSet)
	check(err)

	start := time.Now()

	recv, err := psi.NewReceiver(params, recvDs)
	check(err)
	send, err := psi.NewSender(params, sendDs, recv.Public(), mode)
	check(err)
	if !*quiet {
		recv = recv.WithLogger(l)
		send = send.WithLogger(l)
	}

	ct, err := recv.EncryptDataset()
	check(err)
	answer, err := send.Match(ct)
	check(err)
	result, err := recv.DecryptAndIntersect(answer)
	check(err)

	if !*quiet {
		l.Printf("protocol done in %s (%s, %s mode)", time.Since(start), params, mode)
	}
	if result.Unreliable {
		l.Println("warning: noise budget exhausted, the result may be wrong; use a larger ring degree")
	}

	if result.Empty {
		fmt.Println("the intersection between sender and receiver is empty")
	} else {
		fmt.Print(result.Table())
	}
	if *outPath != "" {
		check(dataio.WriteBitstrings(*outPath, result.Strings()))
	}
}
