package main

import (
	log "github.com/sirupsen/logrus"
)

// The protocol parties that need an SM2 key pair. The generated files are
// meant to be referenced from the `keys` section in `server.yaml`.
var parties = []string{"issuer", "sessionHost", "audit"}

func main() {
	dirKeys := "sm2keys"

	if err := generateKeys(dirKeys, parties); err != nil {
		log.Fatalln(err)
	}

	log.Infof("SM2 key pairs generated under '%v'.", dirKeys)
}
