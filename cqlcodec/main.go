package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// TODO: to be managed externally
const CqlCodecVersionNumber = "1.0"

var (
	displayVersion = flag.Bool("version", false, "Display the cqlcodec version and exit")
	configFile     = flag.String("config", "", "YAML configuration file, CQLCODEC_* environment variables are used when omitted")
	cqlType        = flag.String("type", "", "CQL type of the cell to encode or decode, for example int or varint")
	encodeLiteral  = flag.String("encode", "", "CQL literal to serialize, printed as the hex of the length prefixed cell")
	decodeHex      = flag.String("decode", "", "Hex contents of a cell to decode, printed as a CQL literal")
	frameFile      = flag.String("frame", "", "File holding a RESULT Rows response frame to print row by row")
)

func main() {

	flag.Parse()
	if *displayVersion {
		fmt.Printf("cqlcodec version %v\n", CqlCodecVersionNumber)
		os.Exit(0)
	}

	log.Debugf("cqlcodec version %v", CqlCodecVersionNumber)

	launchCodec(&commandLine{
		configFile:    *configFile,
		cqlType:       *cqlType,
		encodeLiteral: *encodeLiteral,
		decodeHex:     *decodeHex,
		frameFile:     *frameFile,
		encodeSet:     isFlagPassed("encode"),
		decodeSet:     isFlagPassed("decode"),
	})
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
